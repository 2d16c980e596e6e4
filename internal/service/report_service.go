package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type ReportRenderer interface {
	Generate(report model.ImpactReport) ([]byte, error)
}

type ReportService struct {
	Deps
	excel ReportRenderer
	pdf   ReportRenderer
}

type ReportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

func NewReportService(deps Deps, excel, pdf ReportRenderer) *ReportService {
	return &ReportService{Deps: deps.withDefaults(), excel: excel, pdf: pdf}
}

func (s *ReportService) ImpactReport(ctx context.Context, p model.Principal, companyID uuid.UUID) (*ReportFile, error) {
	report, err := s.build(ctx, p, companyID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, fmt.Errorf("render impact report: %w", err)
	}
	return &ReportFile{
		FileName:    s.fileName("impact-report", report, "xlsx"),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *ReportService) Certificate(ctx context.Context, p model.Principal, companyID uuid.UUID) (*ReportFile, error) {
	report, err := s.build(ctx, p, companyID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*report)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return &ReportFile{
		FileName:    s.fileName("certificate", report, "pdf"),
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

func (s *ReportService) build(ctx context.Context, p model.Principal, companyID uuid.UUID) (*model.ImpactReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.Companies.GetCompany(ctx, companyID); err != nil {
		return nil, upstream(notFound(err, "company"))
	}
	company, err := s.ownCompany(ctx, p, companyID)
	if err != nil {
		return nil, upstream(err)
	}

	status := model.DisposalCompleted
	disposals, err := s.Disposals.ListDisposals(ctx, model.DisposalFilter{CompanyID: &companyID, Status: &status})
	if err != nil {
		return nil, upstream(err)
	}

	rules, err := s.Catalog.ListAchievements(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	held := company.HeldSet()
	earned := make([]model.Achievement, 0, len(held))
	for _, rule := range rules {
		if _, ok := held[rule.ID]; ok {
			earned = append(earned, rule)
		}
	}

	return &model.ImpactReport{
		Company:      *company,
		Disposals:    disposals,
		Achievements: earned,
		GeneratedAt:  s.now(),
	}, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

func (s *ReportService) fileName(kind string, report *model.ImpactReport, ext string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(report.Company.Name), "-"), "-")
	if name == "" {
		name = report.Company.ID.String()
	}
	return fmt.Sprintf("%s_%s_%s.%s", kind, name, report.GeneratedAt.Format("20060102"), ext)
}
