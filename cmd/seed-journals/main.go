package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"scipost-api/config"
	"scipost-api/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// seedFile mirrors the journal catalog: journals with their volumes and
// issues, keyed by DOI label so reruns are idempotent.
type seedFile struct {
	Journals []journalSeed `yaml:"journals"`
}

type journalSeed struct {
	Name                 string       `yaml:"name"`
	DOILabel             string       `yaml:"doi_label"`
	Structure            string       `yaml:"structure"`
	ISSN                 *string      `yaml:"issn,omitempty"`
	AssignmentPeriodDays int          `yaml:"assignment_period_days"`
	RefereeingPeriodDays int          `yaml:"refereeing_period_days"`
	MinimalNrOfReports   int          `yaml:"minimal_nr_of_reports"`
	CostInfo             *string      `yaml:"cost_info,omitempty"`
	Volumes              []volumeSeed `yaml:"volumes,omitempty"`
	Issues               []int        `yaml:"issues,omitempty"` // issues-only journals
}

type volumeSeed struct {
	Number int   `yaml:"number"`
	Issues []int `yaml:"issues,omitempty"`
}

func main() {
	seedPath := flag.String("file", "journals.yaml", "path to the journal seed file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	config.InitDB()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatal("Failed to read seed file:", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatal("Failed to parse seed file:", err)
	}

	for _, js := range seed.Journals {
		if err := seedJournal(js); err != nil {
			log.Fatalf("Failed to seed journal %s: %v", js.DOILabel, err)
		}
	}
	log.Printf("Seeded %d journal(s) from %s", len(seed.Journals), *seedPath)
}

func seedJournal(js journalSeed) error {
	switch js.Structure {
	case models.StructureIssuesAndVolumes, models.StructureIssuesOnly, models.StructureIndividualPublications:
	default:
		return fmt.Errorf("unknown structure %q", js.Structure)
	}

	var journal models.Journal
	err := config.DB.Where("doi_label = ?", js.DOILabel).First(&journal).Error
	if err != nil {
		journal = models.Journal{
			Name:                 js.Name,
			DOILabel:             js.DOILabel,
			Structure:            js.Structure,
			ISSN:                 js.ISSN,
			AssignmentPeriodDays: js.AssignmentPeriodDays,
			RefereeingPeriodDays: js.RefereeingPeriodDays,
			MinimalNrOfReports:   js.MinimalNrOfReports,
			CostInfo:             js.CostInfo,
			Active:               true,
		}
		if err := config.DB.Create(&journal).Error; err != nil {
			return err
		}
		log.Printf("Created journal %s", js.DOILabel)
	}

	for _, vs := range js.Volumes {
		volume, err := seedVolume(&journal, vs.Number)
		if err != nil {
			return err
		}
		for _, issueNr := range vs.Issues {
			if err := seedIssue(&journal, volume, issueNr); err != nil {
				return err
			}
		}
	}
	for _, issueNr := range js.Issues {
		if err := seedIssue(&journal, nil, issueNr); err != nil {
			return err
		}
	}
	return nil
}

func seedVolume(journal *models.Journal, number int) (*models.Volume, error) {
	if !journal.HasVolumes() {
		return nil, fmt.Errorf("journal %s does not carry volumes", journal.DOILabel)
	}
	var volume models.Volume
	err := config.DB.Where("journal_id = ? AND number = ?", journal.JournalID, number).First(&volume).Error
	if err == nil {
		return &volume, nil
	}
	volume = models.Volume{
		JournalID: journal.JournalID,
		Number:    number,
		DOILabel:  fmt.Sprintf("%s.%d", journal.DOILabel, number),
	}
	if err := config.DB.Create(&volume).Error; err != nil {
		return nil, err
	}
	return &volume, nil
}

func seedIssue(journal *models.Journal, volume *models.Volume, number int) error {
	if !journal.HasIssues() {
		return fmt.Errorf("journal %s does not carry issues", journal.DOILabel)
	}
	parentLabel := journal.DOILabel
	var volumeID *int
	query := config.DB.Where("journal_id = ? AND number = ?", journal.JournalID, number)
	if volume != nil {
		parentLabel = volume.DOILabel
		volumeID = &volume.VolumeID
		query = query.Where("volume_id = ?", volume.VolumeID)
	} else {
		query = query.Where("volume_id IS NULL")
	}

	var issue models.Issue
	if err := query.First(&issue).Error; err == nil {
		return nil
	}
	issue = models.Issue{
		JournalID: journal.JournalID,
		VolumeID:  volumeID,
		Number:    number,
		DOILabel:  fmt.Sprintf("%s.%d", parentLabel, number),
		Published: true,
	}
	return config.DB.Create(&issue).Error
}
