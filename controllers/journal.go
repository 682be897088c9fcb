package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scipost-api/config"
	"scipost-api/models"
	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// ListJournals lists active journals.
func ListJournals(c *gin.Context) {
	var journals []models.Journal
	query := config.DB.Model(&models.Journal{})
	if c.Query("include_inactive") != "true" {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("journal_id").Find(&journals).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journals": journals})
}

// GetJournal returns one journal.
func GetJournal(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"journal": journal})
}

type journalForm struct {
	Name                 string  `json:"name" binding:"required"`
	DOILabel             string  `json:"doi_label" binding:"required"`
	Structure            string  `json:"structure" binding:"required"`
	ISSN                 *string `json:"issn,omitempty"`
	AssignmentPeriodDays int     `json:"assignment_period_days" binding:"required"`
	RefereeingPeriodDays int     `json:"refereeing_period_days" binding:"required"`
	MinimalNrOfReports   int     `json:"minimal_nr_of_reports"`
	CostInfo             *string `json:"cost_info,omitempty"`
}

func validateJournalForm(form *journalForm) *services.ValidationResult {
	result := &services.ValidationResult{}
	switch form.Structure {
	case models.StructureIssuesAndVolumes, models.StructureIssuesOnly, models.StructureIndividualPublications:
	default:
		result.AddError("structure", fmt.Sprintf("unknown journal structure %q", form.Structure))
	}
	if strings.ContainsAny(form.DOILabel, ". -") {
		result.AddError("doi_label", "the DOI label must be a single word without dots or dashes")
	}
	return result
}

// CreateJournal creates a journal and rebuilds the DOI dispatch pattern
// (EdAdmin).
func CreateJournal(c *gin.Context) {
	var form journalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if validation := validateJournalForm(&form); !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors})
		return
	}

	journal := models.Journal{
		Name:                 form.Name,
		DOILabel:             form.DOILabel,
		Structure:            form.Structure,
		ISSN:                 form.ISSN,
		AssignmentPeriodDays: form.AssignmentPeriodDays,
		RefereeingPeriodDays: form.RefereeingPeriodDays,
		MinimalNrOfReports:   form.MinimalNrOfReports,
		CostInfo:             form.CostInfo,
		Active:               true,
	}
	if err := config.DB.Create(&journal).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := catalog().RefreshDispatchPattern(); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"journal": journal})
}

// UpdateJournal updates a journal's catalog fields and rebuilds the DOI
// dispatch pattern (EdAdmin). The structure is immutable once set.
func UpdateJournal(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	var form journalForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if validation := validateJournalForm(&form); !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors})
		return
	}
	if form.Structure != journal.Structure {
		c.JSON(http.StatusConflict, gin.H{"error": "The journal structure cannot be changed"})
		return
	}

	updates := map[string]interface{}{
		"name":                   form.Name,
		"doi_label":              form.DOILabel,
		"issn":                   form.ISSN,
		"assignment_period_days": form.AssignmentPeriodDays,
		"refereeing_period_days": form.RefereeingPeriodDays,
		"minimal_nr_of_reports":  form.MinimalNrOfReports,
		"cost_info":              form.CostInfo,
	}
	if err := config.DB.Model(&journal).Updates(updates).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := catalog().RefreshDispatchPattern(); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journal": journal})
}

type volumeForm struct {
	Number    int        `json:"number" binding:"required"`
	StartDate *time.Time `json:"start_date,omitempty"`
	UntilDate *time.Time `json:"until_date,omitempty"`
}

// CreateVolume attaches a volume to a journal whose structure carries
// volumes (EdAdmin).
func CreateVolume(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	var form volumeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if validation := services.ValidateVolumeAttachment(&journal); !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors})
		return
	}

	volume := models.Volume{
		JournalID: journal.JournalID,
		Number:    form.Number,
		DOILabel:  fmt.Sprintf("%s.%d", journal.DOILabel, form.Number),
		StartDate: form.StartDate,
		UntilDate: form.UntilDate,
	}
	if err := config.DB.Create(&volume).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"volume": volume})
}

type issueForm struct {
	Number    int        `json:"number" binding:"required"`
	VolumeID  *int       `json:"volume_id,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	UntilDate *time.Time `json:"until_date,omitempty"`
}

// CreateIssue attaches an issue to a journal, through its volume when the
// structure has one (EdAdmin).
func CreateIssue(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	var form issueForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if validation := services.ValidateIssueAttachment(&journal, form.VolumeID); !validation.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors})
		return
	}

	parentLabel := journal.DOILabel
	if form.VolumeID != nil {
		var volume models.Volume
		if err := config.DB.Where("volume_id = ? AND journal_id = ?", *form.VolumeID, journal.JournalID).
			First(&volume).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Volume not found"})
			return
		}
		parentLabel = volume.DOILabel
	}

	issue := models.Issue{
		JournalID: journal.JournalID,
		VolumeID:  form.VolumeID,
		Number:    form.Number,
		DOILabel:  fmt.Sprintf("%s.%d", parentLabel, form.Number),
		StartDate: form.StartDate,
		UntilDate: form.UntilDate,
	}
	if err := config.DB.Create(&issue).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"issue": issue})
}

// GetJournalIssues lists the published issues reachable through the
// journal's structure.
func GetJournalIssues(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	issues, err := catalog().GetIssues(&journal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// GetJournalPublications lists the journal's publications through its
// structure.
func GetJournalPublications(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	publications, err := catalog().GetPublications(&journal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"publications": publications})
}

// GetJournalCost returns the per-publication cost for a year, with the
// journal's default as fallback.
func GetJournalCost(c *gin.Context) {
	journalID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var journal models.Journal
	if err := config.DB.Where("journal_id = ?", journalID).First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	year := time.Now().Year()
	if q := c.Query("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = parsed
	}

	cost, err := journal.CostPerPublication(year)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journal": journal.DOILabel, "year": year, "cost": cost})
}

// ResolveDOI dispatches a DOI label to the journal, volume, issue or
// publication it denotes.
func ResolveDOI(c *gin.Context) {
	label := strings.TrimPrefix(c.Param("label"), "/")
	if label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A DOI label is required"})
		return
	}

	resolution, err := catalog().ResolveDOILabel(label)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}
