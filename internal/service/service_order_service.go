package service

import (
	"context"
	"fmt"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
)

type ServiceOrderService interface {
	Create(ctx context.Context, actingUser *model.User, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, int64, error)
	Assign(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.AssignOrderRequest) (*dto.OrderResponse, error)
	Complete(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.CompleteOrderRequest) (*dto.OrderResponse, error)
	CancelOrder(ctx context.Context, actingUser *model.User, id uuid.UUID) error
}

type serviceOrderService struct {
	repo       repository.ServiceOrderRepository
	clientRepo repository.ClientRepository
	logRepo    repository.ClientLogRepository
}

func NewServiceOrderService(
	repo repository.ServiceOrderRepository,
	clientRepo repository.ClientRepository,
	logRepo repository.ClientLogRepository,
) ServiceOrderService {
	return &serviceOrderService{repo: repo, clientRepo: clientRepo, logRepo: logRepo}
}

func (s *serviceOrderService) Create(ctx context.Context, actingUser *model.User, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, apperror.ErrNotFound
	}

	order := &model.ServiceOrder{
		ClientID: clientID,
		Type:     req.Type,
		Status:   model.OrderPending,
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.audit(ctx, actingUser.ID, &clientID, "order_created", req.Type, order.ID)
	return orderToResponse(order), nil
}

func (s *serviceOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return orderToResponse(order), nil
}

func (s *serviceOrderService) List(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, int64, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *orderToResponse(&orders[i]))
	}
	return out, total, nil
}

func (s *serviceOrderService) Assign(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.AssignOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if order.Status == model.OrderDone || order.Status == model.OrderCancelled {
		return nil, fmt.Errorf("order already %s", order.Status)
	}

	technicianID, err := uuid.Parse(req.TechnicianID)
	if err != nil {
		return nil, fmt.Errorf("invalid technician_id: %w", err)
	}
	order.TechnicianID = &technicianID
	order.Status = model.OrderAssigned
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.audit(ctx, actingUser.ID, &order.ClientID, "order_assigned", "technician "+req.TechnicianID, order.ID)
	return orderToResponse(order), nil
}

// Complete closes the ticket and, for installations, flips the client from
// pending_install to active.
func (s *serviceOrderService) Complete(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.CompleteOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if order.Status == model.OrderDone {
		return nil, fmt.Errorf("order already done")
	}
	if order.Status == model.OrderCancelled {
		return nil, fmt.Errorf("order already cancelled")
	}

	now := nowFn()
	order.Status = model.OrderDone
	order.ClosedAt = &now
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	if order.Type == model.OrderInstallation {
		if client, err := s.clientRepo.FindByID(ctx, order.ClientID); err == nil &&
			client.Status == model.ClientPendingInstall {
			client.Status = model.ClientActive
			if err := s.clientRepo.Update(ctx, client); err != nil {
				return nil, err
			}
		}
	}

	s.audit(ctx, actingUser.ID, &order.ClientID, "order_completed", order.Type, order.ID)
	return orderToResponse(order), nil
}

func (s *serviceOrderService) CancelOrder(ctx context.Context, actingUser *model.User, id uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.ErrNotFound
	}
	if order.Status == model.OrderDone || order.Status == model.OrderCancelled {
		return apperror.ErrAlreadyCancelled
	}

	now := nowFn()
	order.Status = model.OrderCancelled
	order.ClosedAt = &now
	if err := s.repo.Update(ctx, order); err != nil {
		return err
	}

	s.audit(ctx, actingUser.ID, &order.ClientID, "order_cancelled", order.Type, order.ID)
	return nil
}

// audit appends a trail entry; a failed write is logged by the repo layer
// through GORM but never fails the operation itself.
func (s *serviceOrderService) audit(ctx context.Context, userID uuid.UUID, clientID *uuid.UUID, action, detail string, refID uuid.UUID) {
	_ = s.logRepo.Create(ctx, &model.ClientLog{
		ClientID:    clientID,
		UserID:      userID,
		Action:      action,
		Detail:      detail,
		ReferenceID: &refID,
	})
}

func orderToResponse(o *model.ServiceOrder) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:        o.ID.String(),
		ClientID:  o.ClientID.String(),
		Type:      o.Type,
		Status:    o.Status,
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt.Format(timeLayout),
	}
	if o.Client != nil {
		resp.Client = o.Client.Name
	}
	if o.TechnicianID != nil {
		t := o.TechnicianID.String()
		resp.TechnicianID = &t
	}
	if o.ClosedAt != nil {
		t := o.ClosedAt.Format(timeLayout)
		resp.ClosedAt = &t
	}
	return resp
}
