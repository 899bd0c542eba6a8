package service

import (
	"context"
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	GetByContract(ctx context.Context, contract string) (*dto.ClientResponse, error)
	List(ctx context.Context, filter dto.ClientFilter) ([]dto.ClientResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DebtStatus runs the arrears calculation against the current clock.
	DebtStatus(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error)

	History(ctx context.Context, id uuid.UUID, limit int) ([]model.ClientLog, error)
}

type clientService struct {
	repo    repository.ClientRepository
	logRepo repository.ClientLogRepository
	cfg     *config.Config
}

func NewClientService(repo repository.ClientRepository, logRepo repository.ClientLogRepository, cfg *config.Config) ClientService {
	return &clientService{repo: repo, logRepo: logRepo, cfg: cfg}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	anchor := nowFn()
	if req.LastPaidMonth != "" {
		parsed, err := time.Parse(dateLayout, req.LastPaidMonth)
		if err == nil {
			anchor = parsed
		}
	}

	client := &model.Client{
		ContractNumber: req.ContractNumber,
		DocumentID:     req.DocumentID,
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		Zone:           req.Zone,
		LastPaidMonth:  anchor,
		Status:         model.ClientPendingInstall,
		Active:         true,
	}
	if req.PlanID != nil && *req.PlanID != "" {
		planID, err := uuid.Parse(*req.PlanID)
		if err == nil {
			client.PlanID = &planID
		}
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return clientToResponse(client), nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return clientToResponse(client), nil
}

func (s *clientService) GetByContract(ctx context.Context, contract string) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByContract(ctx, contract)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return clientToResponse(client), nil
}

func (s *clientService) List(ctx context.Context, filter dto.ClientFilter) ([]dto.ClientResponse, int64, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, *clientToResponse(&clients[i]))
	}
	return out, total, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.Address != nil {
		client.Address = req.Address
	}
	if req.Zone != nil {
		client.Zone = req.Zone
	}
	if req.PlanID != nil && *req.PlanID != "" {
		planID, perr := uuid.Parse(*req.PlanID)
		if perr == nil {
			client.PlanID = &planID
		}
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return clientToResponse(client), nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.ErrNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}

// DebtStatus is read-only: displaying a client's debt never mutates mora
// flags or balances.
func (s *clientService) DebtStatus(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	cutoffDay := client.LastPaidMonth.Day()
	arrears := ComputeArrears(client.LastPaidMonth, cutoffDay, nowFn(), client.MoraBalance, s.cfg.MoraFeeAmount())

	monthlyFee := decimal.Zero
	if client.Plan != nil {
		monthlyFee = client.Plan.MonthlyPrice
	}
	total := monthlyFee.Mul(decimal.NewFromInt(int64(arrears.MonthsOwed))).Add(arrears.MoraAmount)

	return &dto.DebtResponse{
		ClientID:   client.ID.String(),
		MonthsOwed: arrears.MonthsOwed,
		HasMora:    arrears.HasMora,
		OwedMonths: arrears.OwedMonths,
		MoraAmount: arrears.MoraAmount,
		MonthlyFee: monthlyFee,
		TotalOwed:  total,
		CutoffDay:  cutoffDay,
		LastPaid:   client.LastPaidMonth.Format(dateLayout),
		Status:     client.Status,
	}, nil
}

func (s *clientService) History(ctx context.Context, id uuid.UUID, limit int) ([]model.ClientLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logRepo.ListByClient(ctx, id, limit)
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	resp := &dto.ClientResponse{
		ID:             c.ID.String(),
		ContractNumber: c.ContractNumber,
		DocumentID:     c.DocumentID,
		Name:           c.Name,
		Phone:          c.Phone,
		Address:        c.Address,
		Zone:           c.Zone,
		LastPaidMonth:  c.LastPaidMonth.Format(dateLayout),
		MoraBalance:    c.MoraBalance,
		Status:         c.Status,
	}
	if c.Plan != nil {
		name := c.Plan.Name
		resp.Plan = &name
	}
	return resp
}
