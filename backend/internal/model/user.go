package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// 用户角色
const (
	RoleFieldAgent = "field_agent"
	RoleAdmin      = "admin"
)

// User 用户文档 — 对应 users 集合中的一项
//
// 用户由外部种子文件维护，未声明的字段保存在 Extra 中并在写回时原样输出。
type User struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     string       `json:"role,omitempty"`
	Group    string       `json:"group,omitempty"`
	Hotels   []Assignment `json:"hotels"`
	Extra    Extra        `json:"-"`
}

var userFields = []string{"username", "password", "role", "group", "hotels"}

// UnmarshalJSON 解析已声明字段并保留其余字段
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, userFields)
	if err != nil {
		return err
	}
	*u = User(p)
	u.Extra = extra
	return nil
}

// MarshalJSON 输出已声明字段与 Extra
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalWithExtra(plain(u), u.Extra)
}

// EffectiveRole 未配置角色的历史用户视为外勤人员
func (u *User) EffectiveRole() string {
	if u.Role == "" {
		return RoleFieldAgent
	}
	return u.Role
}

// FindAssignment 按名称（去除首尾空白后精确匹配）查找分配，未找到返回 -1
func (u *User) FindAssignment(hotelName string) int {
	key := NormalizeHotelName(hotelName)
	for i := range u.Hotels {
		if NormalizeHotelName(u.Hotels[i].Name) == key {
			return i
		}
	}
	return -1
}

// Assignment 用户与酒店的分配关系
//
// 历史数据中分配项可能是裸字符串（仅酒店名），解码时统一转换为结构体；
// 重新写回时总是以结构体形式编码。
type Assignment struct {
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Completed bool     `json:"completed"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Extra     Extra    `json:"-"`
}

var assignmentFields = []string{"name", "address", "completed", "lat", "lng"}

// UnmarshalJSON 兼容裸字符串与对象两种形态
func (a *Assignment) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*a = Assignment{Name: name}
		return nil
	}

	type plain Assignment
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("无法解析酒店分配项: %w", err)
	}
	extra, err := unknownFields(trimmed, assignmentFields)
	if err != nil {
		return fmt.Errorf("无法解析酒店分配项: %w", err)
	}
	*a = Assignment(p)
	a.Extra = extra
	return nil
}

// MarshalJSON 总是以对象形式输出，并带上 Extra
func (a Assignment) MarshalJSON() ([]byte, error) {
	type plain Assignment
	return marshalWithExtra(plain(a), a.Extra)
}

// NormalizeHotelName 酒店名匹配规则：去除首尾空白，区分大小写
func NormalizeHotelName(name string) string {
	return strings.TrimSpace(name)
}

// UserCollection users 集合的完整文档
type UserCollection struct {
	Users []User `json:"users"`
	Extra Extra  `json:"-"`
}

// UnmarshalJSON 保留 users 以外的顶层字段
func (c *UserCollection) UnmarshalJSON(data []byte) error {
	type plain UserCollection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownFields(data, []string{"users"})
	if err != nil {
		return err
	}
	*c = UserCollection(p)
	c.Extra = extra
	return nil
}

// MarshalJSON 输出 users 与保留的顶层字段
func (c UserCollection) MarshalJSON() ([]byte, error) {
	type plain UserCollection
	return marshalWithExtra(plain(c), c.Extra)
}

// FindUser 按用户名查找，未找到返回 -1
func (c *UserCollection) FindUser(username string) int {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return i
		}
	}
	return -1
}

// ── 未声明字段 ──

// Extra 文档中未映射到结构体的字段，原始 JSON 保存
type Extra map[string]json.RawMessage

// unknownFields 提取对象中 known 以外的字段，没有时返回 nil
func unknownFields(data []byte, known []string) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// marshalWithExtra 编码 v 后补上 extra 中的字段；与已声明字段同名的键以结构体为准
func marshalWithExtra(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, declared := obj[k]; !declared {
			obj[k] = raw
		}
	}
	return json.Marshal(obj)
}
