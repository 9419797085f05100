package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrEvidenceNotFound = errors.New("evidence not found")
	ErrMissingLocation  = errors.New("location or address is required")
	ErrInvalidAssignee  = fmt.Errorf("%w: assignee must be an active police or admin user", dto.ErrInvalidInput)
)
