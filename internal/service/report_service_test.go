package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type recordingRenderer struct {
	got model.ImpactReport
	err error
}

func (r *recordingRenderer) Generate(report model.ImpactReport) ([]byte, error) {
	r.got = report
	if r.err != nil {
		return nil, r.err
	}
	return []byte("rendered"), nil
}

func TestImpactReportCollectsCompletedDisposals(t *testing.T) {
	f := newFixture()
	excel, pdf := &recordingRenderer{}, &recordingRenderer{}
	svc := NewReportService(f.deps, excel, pdf)
	disposals := NewDisposalService(f.deps)

	d := f.accepted(3)
	_, err := disposals.Complete(context.Background(), f.workerUser, d.ID)
	require.NoError(t, err)
	f.pending(1)

	file, err := svc.ImpactReport(context.Background(), f.companyUser, f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, "impact-report_green-works_20260314.xlsx", file.FileName)
	assert.Equal(t, xlsxContentType, file.ContentType)
	assert.Equal(t, []byte("rendered"), file.Content)

	require.Len(t, excel.got.Disposals, 1)
	assert.Equal(t, d.ID, excel.got.Disposals[0].ID)
	require.Len(t, excel.got.Achievements, 1)
	assert.InDelta(t, 6, excel.got.Company.Stats.CO2Saved, 1e-9)

	cert, err := svc.Certificate(context.Background(), f.companyUser, f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, "certificate_green-works_20260314.pdf", cert.FileName)
	assert.Equal(t, pdfContentType, cert.ContentType)
}

func TestReportAccess(t *testing.T) {
	f := newFixture()
	svc := NewReportService(f.deps, &recordingRenderer{}, &recordingRenderer{err: errors.New("font missing")})

	_, err := svc.ImpactReport(context.Background(), f.stranger(), f.company.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ImpactReport(context.Background(), f.workerUser, f.company.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ImpactReport(context.Background(), f.companyUser, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Certificate(context.Background(), f.companyUser, f.company.ID)
	require.Error(t, err)
	assert.False(t, isClassified(err))
}
