package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"scipost-api/models"
	"scipost-api/utils"

	"gorm.io/gorm"
)

// PreprintService mints SciPost-native preprint identifiers. Parsing and
// formatting are pure (utils/identifier.go); generation scans existing
// records and is therefore database-bound.
type PreprintService struct {
	db *gorm.DB
}

// NewPreprintService creates a preprint service on the given database.
func NewPreprintService(db *gorm.DB) *PreprintService {
	return &PreprintService{db: db}
}

// GenerateScipostIdentifier produces the identifier (with version suffix)
// for the next SciPost-native submission in a thread.
//
// If any prior version of the thread already used a SciPost-native preprint,
// its base id is reused and the version number is one past the highest
// version number already carried on that base, so the new identifier can
// never collide with an existing one. Otherwise a fresh monthly-sequential
// base id is minted and the version number is the count of all prior
// versions plus one.
func (s *PreprintService) GenerateScipostIdentifier(threadHash string, now time.Time) (string, error) {
	var prior []models.Submission
	if err := s.db.Preload("Preprint").
		Where("thread_hash = ?", threadHash).
		Order("submission_date ASC").
		Find(&prior).Error; err != nil {
		return "", fmt.Errorf("loading thread %s: %w", threadHash, err)
	}

	var scipostBase string
	maxVn := 0
	for _, sub := range prior {
		if utils.IsScipostIdentifier(sub.Preprint.IdentifierWVnNr) {
			base, vn, err := utils.ParseScipostIdentifier(sub.Preprint.IdentifierWVnNr)
			if err != nil {
				return "", err
			}
			if scipostBase == "" {
				scipostBase = base
			}
			if vn > maxVn {
				maxVn = vn
			}
		}
	}

	if scipostBase != "" {
		return utils.WithVersion(scipostBase, maxVn+1), nil
	}

	base, err := s.mintMonthlyBase(now)
	if err != nil {
		return "", err
	}
	return utils.WithVersion(base, len(prior)+1), nil
}

// mintMonthlyBase scans existing identifiers carrying the current-month
// prefix and takes max sequence + 1.
func (s *PreprintService) mintMonthlyBase(now time.Time) (string, error) {
	prefix := fmt.Sprintf("scipost_%04d%02d_", now.Year(), int(now.Month()))

	var identifiers []string
	if err := s.db.Model(&models.Preprint{}).
		Where("identifier_w_vn_nr LIKE ?", prefix+"%").
		Pluck("identifier_w_vn_nr", &identifiers).Error; err != nil {
		return "", fmt.Errorf("scanning %s identifiers: %w", prefix, err)
	}

	maxSeq := 0
	for _, id := range identifiers {
		base, _, err := utils.ParseScipostIdentifier(id)
		if err != nil {
			continue
		}
		seqPart := strings.TrimPrefix(base, prefix)
		if seq, err := strconv.Atoi(seqPart); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}

	return utils.FormatScipostBase(now.Year(), int(now.Month()), maxSeq+1), nil
}
