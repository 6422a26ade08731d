package usecase

import (
	"context"
	"net/http"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// 新しい順
func (u *AuditUsecase) List(ctx context.Context, page, limit int, f repo.AuditLogFilter) (AuditLogListOutput, error) {
	if page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "Página inválida")
	}
	if limit < 1 || limit > 100 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "Límite inválido")
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	items, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, dbError("Error al obtener la auditoría", err)
	}
	return AuditLogListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}
