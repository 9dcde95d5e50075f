// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Organization.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// ListActiveOrganizations returns every tenant with is_active set, ordered by
// creation time so batch runs process tenants in a stable order.
func ListActiveOrganizations(ctx context.Context, db *gorm.DB) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&orgs).Error
	return orgs, err
}
