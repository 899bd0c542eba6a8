package service

import (
	"context"

	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"
)

type ReportService interface {
	DailySummary(ctx context.Context, date string) (*dto.DailySummaryResponse, error)
	TopDebtors(ctx context.Context, limit int) ([]dto.DebtorItem, error)
}

type reportService struct {
	txRepo     repository.TransactionRepository
	clientRepo repository.ClientRepository
	cfg        *config.Config
}

func NewReportService(txRepo repository.TransactionRepository, clientRepo repository.ClientRepository, cfg *config.Config) ReportService {
	return &reportService{txRepo: txRepo, clientRepo: clientRepo, cfg: cfg}
}

func (s *reportService) DailySummary(ctx context.Context, date string) (*dto.DailySummaryResponse, error) {
	if date == "" {
		date = nowFn().Format(dateLayout)
	}
	total, count, clients, byMethod, err := s.txRepo.DailySummary(ctx, date)
	if err != nil {
		return nil, err
	}
	return &dto.DailySummaryResponse{
		Date:             date,
		Total:            total,
		TransactionCount: count,
		ClientCount:      clients,
		ByMethod:         byMethod,
	}, nil
}

// TopDebtors lists the most delinquent clients. The cutoff is one month
// before today: anyone whose billing anchor is older owes at least one month.
func (s *reportService) TopDebtors(ctx context.Context, limit int) ([]dto.DebtorItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	now := nowFn()
	before := now.AddDate(0, -1, 0).Format(dateLayout)

	clients, err := s.clientRepo.ListDebtors(ctx, before, limit)
	if err != nil {
		return nil, err
	}

	moraFee := s.cfg.MoraFeeAmount()
	items := make([]dto.DebtorItem, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		arrears := ComputeArrears(c.LastPaidMonth, c.LastPaidMonth.Day(), now, c.MoraBalance, moraFee)
		items = append(items, dto.DebtorItem{
			ClientID:       c.ID.String(),
			ContractNumber: c.ContractNumber,
			Name:           c.Name,
			MonthsOwed:     arrears.MonthsOwed,
			MoraAmount:     arrears.MoraAmount,
			Status:         c.Status,
		})
	}
	return items, nil
}
