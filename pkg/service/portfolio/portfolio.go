// Package portfolio exposes read models over depository accounts: positions,
// movement history and chart aggregations.
package portfolio

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/brokerage/pkg/domain"
	"github.com/amirasaad/brokerage/pkg/domain/depository"
	"github.com/amirasaad/brokerage/pkg/dto"
	"github.com/amirasaad/brokerage/pkg/repository"
)

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// DepositoryAccount returns the user's depository account with its positive
// positions and incoming operations.
func (s *Service) DepositoryAccount(ctx context.Context, userID int64) (*dto.DepositoryAccountRead, error) {
	repo := s.uow.Depository()
	acc, err := repo.GetAccountByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, depository.ErrAccountNotFound
		}
		return nil, err
	}
	balances, err := repo.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	ops, err := repo.Operations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.DepositoryAccountRead{
		ID:             acc.ID,
		ContractNumber: acc.ContractNumber,
		OpenedAt:       acc.OpenedAt,
		Balances:       balances,
		Operations:     ops,
	}, nil
}

// Securities returns the securities the user currently holds.
func (s *Service) Securities(ctx context.Context, userID int64) ([]dto.HoldingRead, error) {
	return s.uow.Depository().Holdings(ctx, userID)
}

// BalanceChart returns held quantity per security, ordered by security name.
func (s *Service) BalanceChart(ctx context.Context, userID int64) ([]dto.BalanceChartItem, error) {
	holdings, err := s.uow.Depository().Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceChartItem, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, dto.BalanceChartItem{SecurityName: h.SecurityName, Quantity: h.Amount})
	}
	return out, nil
}

// OperationsChart aggregates all depository movements by operation type and security.
func (s *Service) OperationsChart(ctx context.Context) ([]dto.OperationSummary, error) {
	return s.uow.Depository().OperationsSummary(ctx)
}
