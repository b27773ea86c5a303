package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hotel-survey/backend/internal/dto"
	"hotel-survey/backend/internal/model"
	"hotel-survey/backend/internal/repository"
	pkgerrors "hotel-survey/backend/pkg/errors"
)

// AssignmentService 酒店分配业务接口
type AssignmentService interface {
	// AddHotel 为用户追加一个未完成的酒店分配
	AddHotel(ctx context.Context, req *dto.AddHotelRequest) (*model.Assignment, error)
}

type assignmentService struct {
	repo     *repository.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误消息使用 JSON 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &assignmentService{repo: repo, validate: v, logger: logger}
}

func (s *assignmentService) AddHotel(ctx context.Context, req *dto.AddHotelRequest) (*model.Assignment, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.HotelName = model.NormalizeHotelName(req.HotelName)
	req.Address = strings.TrimSpace(req.Address)

	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	added := model.Assignment{
		Name:    req.HotelName,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
	}

	err := s.repo.User.Update(ctx, func(c *model.UserCollection) error {
		ui := c.FindUser(req.Username)
		if ui < 0 {
			return ErrUserNotFound
		}
		u := &c.Users[ui]
		if u.FindAssignment(added.Name) >= 0 {
			return ErrHotelAlreadyAssigned
		}
		u.Hotels = append(u.Hotels, added)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("新增酒店分配", zap.String("username", req.Username), zap.String("hotel", added.Name))
	return &added, nil
}

// validationError 把 validator 的第一条错误转换为业务错误
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return pkgerrors.Wrap(ErrInvalidHotelRequest, err)
	}

	fe := verrs[0]
	msg := "Invalid field: " + fe.Field()
	if fe.Tag() == "required" {
		msg = "Missing required field: " + fe.Field()
	}
	return pkgerrors.WithMessage(ErrInvalidHotelRequest, msg)
}
