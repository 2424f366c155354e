package bulkupload

import (
	"github.com/shopspring/decimal"

	"github.com/sharath018/idea-factory-backend/internal/idea"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJSON Format = "json"
)

// Columns is the canonical header row, in template order.
var Columns = []string{
	"title",
	"description",
	"category",
	"sector",
	"investmentNeeded",
	"expertiseNeeded",
	"trainingNeeded",
	"resources",
	"successExamples",
	"videoUrl",
	"governmentSubsidies",
	"fundingOptions",
	"bankAssistance",
	"targetAudience",
	"specialAdvantages",
	"difficultyLevel",
	"timeToMarket",
	"location",
	"imageUrl",
}

// Upload is one file handed to the pipeline.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result summarizes an ingestion. FailureCount is the number of parsed
// candidates that could not be saved.
type Result struct {
	BatchID      string `json:"batchId"`
	Filename     string `json:"filename"`
	TotalRows    int    `json:"totalRows"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
}

// jsonIdea is one element of a JSON upload.
type jsonIdea struct {
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Category            string           `json:"category"`
	Sector              string           `json:"sector"`
	InvestmentNeeded    *decimal.Decimal `json:"investmentNeeded"`
	ExpertiseNeeded     string           `json:"expertiseNeeded"`
	TrainingNeeded      string           `json:"trainingNeeded"`
	Resources           string           `json:"resources"`
	SuccessExamples     string           `json:"successExamples"`
	VideoURL            string           `json:"videoUrl"`
	GovernmentSubsidies string           `json:"governmentSubsidies"`
	FundingOptions      string           `json:"fundingOptions"`
	BankAssistance      string           `json:"bankAssistance"`
	TargetAudience      []string         `json:"targetAudience"`
	SpecialAdvantages   []string         `json:"specialAdvantages"`
	DifficultyLevel     string           `json:"difficultyLevel"`
	TimeToMarket        string           `json:"timeToMarket"`
	Location            string           `json:"location"`
	ImageURL            string           `json:"imageUrl"`
}

func (j jsonIdea) toIdea() idea.Idea {
	investment := decimal.Zero
	if j.InvestmentNeeded != nil {
		investment = *j.InvestmentNeeded
	}
	return idea.Idea{
		Title:               j.Title,
		Description:         j.Description,
		Category:            j.Category,
		Sector:              j.Sector,
		InvestmentNeeded:    investment,
		ExpertiseNeeded:     j.ExpertiseNeeded,
		TrainingNeeded:      j.TrainingNeeded,
		Resources:           j.Resources,
		SuccessExamples:     j.SuccessExamples,
		VideoURL:            j.VideoURL,
		GovernmentSubsidies: j.GovernmentSubsidies,
		FundingOptions:      j.FundingOptions,
		BankAssistance:      j.BankAssistance,
		TargetAudience:      idea.NormalizeTags(j.TargetAudience),
		SpecialAdvantages:   idea.NormalizeTags(j.SpecialAdvantages),
		DifficultyLevel:     j.DifficultyLevel,
		TimeToMarket:        j.TimeToMarket,
		Location:            j.Location,
		ImageURL:            j.ImageURL,
	}
}
