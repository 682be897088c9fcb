package services

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"scipost-api/models"
	"scipost-api/utils"

	"gorm.io/gorm"
)

// Resolution kinds returned by ResolveDOILabel.
const (
	ResolvedJournal     = "journal"
	ResolvedVolume      = "volume"
	ResolvedIssue       = "issue"
	ResolvedPublication = "publication"
)

// DOIResolution is the tagged result of dispatching a DOI label: exactly one
// of the object fields matching Kind is set.
type DOIResolution struct {
	Kind        string              `json:"kind"`
	Journal     *models.Journal     `json:"journal,omitempty"`
	Volume      *models.Volume      `json:"volume,omitempty"`
	Issue       *models.Issue       `json:"issue,omitempty"`
	Publication *models.Publication `json:"publication,omitempty"`
}

// JournalCatalogService enforces the Journal > Volume > Issue > Publication
// containment hierarchy and resolves DOI labels against it.
type JournalCatalogService struct {
	db *gorm.DB

	// The dispatch pattern is compiled from the journal table, cached with
	// a TTL, and rebuilt on demand. RefreshDispatchPattern must be called
	// after the journal set changes.
	patternMu        sync.RWMutex
	pattern          *utils.DispatchPattern
	patternFetchedAt time.Time
}

const dispatchPatternTTL = 5 * time.Minute

// NewJournalCatalogService creates a catalog service on the given database.
func NewJournalCatalogService(db *gorm.DB) *JournalCatalogService {
	return &JournalCatalogService{db: db}
}

// RefreshDispatchPattern rebuilds the dispatch regex from the current
// journal set. Call it after creating, renaming or deleting a journal.
func (s *JournalCatalogService) RefreshDispatchPattern() error {
	_, err := s.dispatchPattern(true)
	return err
}

func (s *JournalCatalogService) dispatchPattern(force bool) (*utils.DispatchPattern, error) {
	s.patternMu.RLock()
	cached := s.pattern
	fetchedAt := s.patternFetchedAt
	s.patternMu.RUnlock()

	if cached != nil && !force && time.Since(fetchedAt) < dispatchPatternTTL {
		return cached, nil
	}

	var labels []string
	if err := s.db.Model(&models.Journal{}).Pluck("doi_label", &labels).Error; err != nil {
		return nil, fmt.Errorf("loading journal labels: %w", err)
	}
	pattern, err := utils.NewDispatchPattern(labels)
	if err != nil {
		return nil, err
	}

	s.patternMu.Lock()
	s.pattern = pattern
	s.patternFetchedAt = time.Now()
	s.patternMu.Unlock()
	return pattern, nil
}

// ResolveDOILabel dispatches a DOI label (or URL path segment) to the object
// it denotes. Unknown labels return ErrNotFound; resolution never panics on
// malformed input.
func (s *JournalCatalogService) ResolveDOILabel(label string) (*DOIResolution, error) {
	pattern, err := s.dispatchPattern(false)
	if err != nil {
		return nil, err
	}
	match, ok := pattern.Match(label)
	if !ok {
		return nil, fmt.Errorf("doi label %q: %w", label, ErrNotFound)
	}

	var journal models.Journal
	if err := s.db.Where("doi_label = ?", match.JournalTag).First(&journal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("journal %q: %w", match.JournalTag, ErrNotFound)
		}
		return nil, err
	}

	switch match.NrParts() {
	case 0:
		return &DOIResolution{Kind: ResolvedJournal, Journal: &journal}, nil
	case 1:
		return s.resolveOnePart(&journal, match)
	case 2:
		return s.resolveTwoParts(&journal, match)
	case 3:
		return s.resolvePublication(&journal,
			fmt.Sprintf("%s.%s.%s.%s", match.JournalTag, match.Part1, match.Part2, match.Part3))
	default:
		return nil, fmt.Errorf("doi label %q: %w", label, ErrNotFound)
	}
}

func (s *JournalCatalogService) resolveOnePart(journal *models.Journal, match *utils.DOIMatch) (*DOIResolution, error) {
	nr, numeric := atoi(match.Part1)
	switch journal.Structure {
	case models.StructureIssuesAndVolumes:
		if !numeric {
			return nil, fmt.Errorf("volume %q: %w", match.Part1, ErrNotFound)
		}
		var volume models.Volume
		err := s.db.Where("journal_id = ? AND number = ?", journal.JournalID, nr).First(&volume).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("volume %q: %w", match.Part1, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return &DOIResolution{Kind: ResolvedVolume, Volume: &volume}, nil
	case models.StructureIssuesOnly:
		// No volume level: the first part names the issue directly.
		if !numeric {
			return nil, fmt.Errorf("issue %q: %w", match.Part1, ErrNotFound)
		}
		var issue models.Issue
		err := s.db.Where("journal_id = ? AND volume_id IS NULL AND number = ?", journal.JournalID, nr).First(&issue).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("issue %q: %w", match.Part1, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return &DOIResolution{Kind: ResolvedIssue, Issue: &issue}, nil
	case models.StructureIndividualPublications:
		return s.resolvePublication(journal, journal.DOILabel+"."+match.Part1)
	}
	return nil, fmt.Errorf("journal %q has unknown structure %q", journal.DOILabel, journal.Structure)
}

func (s *JournalCatalogService) resolveTwoParts(journal *models.Journal, match *utils.DOIMatch) (*DOIResolution, error) {
	switch journal.Structure {
	case models.StructureIssuesAndVolumes:
		volNr, ok1 := atoi(match.Part1)
		issueNr, ok2 := atoi(match.Part2)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("issue %s.%s: %w", match.Part1, match.Part2, ErrNotFound)
		}
		var issue models.Issue
		err := s.db.
			Joins("JOIN volumes ON volumes.volume_id = issues.volume_id").
			Where("issues.journal_id = ? AND volumes.number = ? AND issues.number = ?",
				journal.JournalID, volNr, issueNr).
			First(&issue).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("issue %s.%s: %w", match.Part1, match.Part2, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return &DOIResolution{Kind: ResolvedIssue, Issue: &issue}, nil
	case models.StructureIssuesOnly:
		return s.resolvePublication(journal,
			fmt.Sprintf("%s.%s.%s", journal.DOILabel, match.Part1, match.Part2))
	}
	return nil, fmt.Errorf("doi label %s.%s.%s: %w", journal.DOILabel, match.Part1, match.Part2, ErrNotFound)
}

func (s *JournalCatalogService) resolvePublication(journal *models.Journal, doiLabel string) (*DOIResolution, error) {
	var publication models.Publication
	err := s.db.Where("journal_id = ? AND doi_label = ?", journal.JournalID, doiLabel).First(&publication).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("publication %q: %w", doiLabel, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &DOIResolution{Kind: ResolvedPublication, Publication: &publication}, nil
}

// GetIssues returns the published issues reachable through the journal's
// declared structure. Individual-publications journals have none.
func (s *JournalCatalogService) GetIssues(journal *models.Journal) ([]models.Issue, error) {
	var issues []models.Issue
	switch journal.Structure {
	case models.StructureIssuesAndVolumes:
		err := s.db.
			Joins("JOIN volumes ON volumes.volume_id = issues.volume_id").
			Where("volumes.journal_id = ? AND issues.published = ?", journal.JournalID, true).
			Order("issues.issue_id").
			Find(&issues).Error
		return issues, err
	case models.StructureIssuesOnly:
		err := s.db.
			Where("journal_id = ? AND volume_id IS NULL AND published = ?", journal.JournalID, true).
			Order("issue_id").
			Find(&issues).Error
		return issues, err
	default:
		return issues, nil
	}
}

// GetPublications returns the journal's publications through its declared
// structure.
func (s *JournalCatalogService) GetPublications(journal *models.Journal) ([]models.Publication, error) {
	var publications []models.Publication
	switch journal.Structure {
	case models.StructureIndividualPublications:
		err := s.db.
			Where("journal_id = ? AND issue_id IS NULL", journal.JournalID).
			Order("paper_nr").
			Find(&publications).Error
		return publications, err
	default:
		err := s.db.
			Where("journal_id = ? AND issue_id IS NOT NULL", journal.JournalID).
			Order("publication_id").
			Find(&publications).Error
		return publications, err
	}
}

// NextPaperNumber assigns the 1-based position of the next publication in
// its container (issue, or journal for individual-publications journals).
// Withdrawn publications keep their row and their number, so numbers are
// never reused.
func NextPaperNumber(tx *gorm.DB, journalID int, issueID *int) (int, error) {
	var count int64
	query := tx.Model(&models.Publication{}).Where("journal_id = ?", journalID)
	if issueID != nil {
		query = query.Where("issue_id = ?", *issueID)
	} else {
		query = query.Where("issue_id IS NULL")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// ValidateVolumeAttachment rejects attaching a volume to a journal whose
// structure has no volume level.
func ValidateVolumeAttachment(journal *models.Journal) *ValidationResult {
	result := &ValidationResult{}
	if !journal.HasVolumes() {
		result.AddError("journal_id",
			fmt.Sprintf("journal %s (structure %s) does not carry volumes", journal.DOILabel, journal.Structure))
	}
	return result
}

// ValidateIssueAttachment rejects attaching an issue to a journal whose
// structure has no issue level, and enforces the volume linkage rule.
func ValidateIssueAttachment(journal *models.Journal, volumeID *int) *ValidationResult {
	result := &ValidationResult{}
	if !journal.HasIssues() {
		result.AddError("journal_id",
			fmt.Sprintf("journal %s (structure %s) does not carry issues", journal.DOILabel, journal.Structure))
		return result
	}
	if journal.HasVolumes() && volumeID == nil {
		result.AddError("volume_id", "issues of this journal must belong to a volume")
	}
	if !journal.HasVolumes() && volumeID != nil {
		result.AddError("volume_id", "issues of this journal attach directly to the journal")
	}
	return result
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
