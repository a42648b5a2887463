package model

import (
	"path/filepath"
	"strings"
)

// FileCategory identifies which of the four backend dataset slots an
// uploaded CSV belongs to.
type FileCategory string

const (
	CategoryBeneficiary FileCategory = "beneficiary"
	CategoryInpatient   FileCategory = "inpatient"
	CategoryOutpatient  FileCategory = "outpatient"
	CategoryProvider    FileCategory = "provider"
)

// Label returns the display name for the category.
func (c FileCategory) Label() string {
	switch c {
	case CategoryBeneficiary:
		return "Beneficiary Data"
	case CategoryInpatient:
		return "Inpatient Data"
	case CategoryOutpatient:
		return "Outpatient Data"
	default:
		return "Provider Data"
	}
}

// ClassifyFilename infers the dataset category from a filename substring.
// Filenames that match none of the known markers classify as provider data;
// a misclassified file is a data-entry issue the backend reports at ingest
// time, not an error here.
func ClassifyFilename(name string) FileCategory {
	lower := strings.ToLower(filepath.Base(name))
	switch {
	case strings.Contains(lower, "beneficiary"):
		return CategoryBeneficiary
	case strings.Contains(lower, "inpatient"):
		return CategoryInpatient
	case strings.Contains(lower, "outpatient"):
		return CategoryOutpatient
	default:
		return CategoryProvider
	}
}

// IsCSV reports whether the filename has a .csv extension, ignoring case.
// Non-CSV files are rejected before any network call.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// FileStatus tracks an uploaded file through its lifecycle.
type FileStatus string

const (
	FileUploaded   FileStatus = "uploaded"
	FileProcessing FileStatus = "processing"
	FileError      FileStatus = "error"
)

// StagedFile represents one file staged for ingestion. A file that fails
// upload keeps its error status until the user removes it; it never returns
// to uploaded.
type StagedFile struct {
	Name     string
	Path     string
	Category FileCategory
	Status   FileStatus
	Error    string
}
