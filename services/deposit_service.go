package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"scipost-api/models"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// DepositService hands finalized publication metadata to the external
// deposit gateway (Crossref/DOAJ). The XML schema lives on the gateway
// side; the workflow only records success or failure so EdAdmin can retry
// manually. Calls are rate-limited to stay polite toward the registrar.
type DepositService struct {
	db      *gorm.DB
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewDepositService creates a deposit service. The gateway URL comes from
// DEPOSIT_GATEWAY_URL.
func NewDepositService(db *gorm.DB) *DepositService {
	return &DepositService{
		db:      db,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		baseURL: os.Getenv("DEPOSIT_GATEWAY_URL"),
	}
}

type depositPayload struct {
	DOIBatchID string  `json:"doi_batch_id"`
	Target     string  `json:"target"`
	DOILabel   string  `json:"doi_label"`
	Title      string  `json:"title"`
	AuthorList string  `json:"author_list"`
	Abstract   string  `json:"abstract"`
	Journal    string  `json:"journal"`
	IssuedOn   *string `json:"issued_on,omitempty"`
}

type depositResponse struct {
	Success      bool   `json:"success"`
	ResponseText string `json:"response_text"`
}

// DepositPublication posts a publication's metadata to the gateway and
// records the attempt. A gateway failure is stored on the deposit record,
// not raised; the publication keeps doideposit_needs_updating until a
// deposit succeeds.
func (s *DepositService) DepositPublication(ctx context.Context, publicationID int, target string) (*models.Deposit, error) {
	if target != models.DepositTargetCrossref && target != models.DepositTargetDOAJ {
		result := &ValidationResult{}
		result.AddError("target", fmt.Sprintf("unknown deposit target %q", target))
		return nil, result
	}

	var publication models.Publication
	err := s.db.Preload("Journal").Where("publication_id = ?", publicationID).First(&publication).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("publication %d: %w", publicationID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	success, responseText := s.callGateway(ctx, &publication, target, batchID)

	deposit := &models.Deposit{
		PublicationID:     publicationID,
		Target:            target,
		DOIBatchID:        batchID,
		DepositSuccessful: success,
		DepositedOn:       time.Now(),
	}
	if responseText != "" {
		deposit.ResponseText = &responseText
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deposit).Error; err != nil {
			return err
		}
		if success {
			return tx.Model(&models.Publication{}).
				Where("publication_id = ?", publicationID).
				Update("doideposit_needs_updating", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deposit, nil
}

func (s *DepositService) callGateway(ctx context.Context, publication *models.Publication, target, batchID string) (bool, string) {
	if s.baseURL == "" {
		return false, "deposit gateway not configured (DEPOSIT_GATEWAY_URL)"
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err.Error()
	}

	payload := depositPayload{
		DOIBatchID: batchID,
		Target:     target,
		DOILabel:   publication.DOILabel,
		Title:      publication.Title,
		AuthorList: publication.AuthorList,
		Abstract:   publication.Abstract,
		Journal:    publication.Journal.DOILabel,
	}
	if publication.PublicationDate != nil {
		issued := publication.PublicationDate.Format("2006-01-02")
		payload.IssuedOn = &issued
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err.Error()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/deposits", bytes.NewReader(body))
	if err != nil {
		return false, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()

	var gatewayResp depositResponse
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return false, fmt.Sprintf("gateway returned status %d with unreadable body: %v", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, gatewayResp.ResponseText)
	}
	return gatewayResp.Success, gatewayResp.ResponseText
}
