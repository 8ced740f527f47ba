package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/jobs"
)

type reconcilerMock struct{ mock.Mock }

func (m *reconcilerMock) Reconcile(ctx context.Context, companyID string) (*dto.ReconciliationReport, error) {
	args := m.Called(ctx, companyID)
	r, _ := args.Get(0).(*dto.ReconciliationReport)
	return r, args.Error(1)
}

func (m *reconcilerMock) ReconcileAll(ctx context.Context) ([]*dto.ReconciliationReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]*dto.ReconciliationReport)
	return r, args.Error(1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tarea de reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestNewReconcileTask_Payload(t *testing.T) {
	task, err := jobs.NewReconcileTask("c-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.TypeReconcile, task.Type())

	var p jobs.ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "c-1", p.CompanyID)
}

func TestReconcileHandler_UnaEmpresa(t *testing.T) {
	m := &reconcilerMock{}
	m.On("Reconcile", mock.Anything, "c-1").
		Return(&dto.ReconciliationReport{CompanyID: "c-1", Drift: []dto.DriftItem{{Difference: -3}}}, nil).Once()

	task, err := jobs.NewReconcileTask("c-1")
	require.NoError(t, err)
	require.NoError(t, jobs.NewReconcileHandler(m, zerolog.Nop()).ProcessTask(context.Background(), task))
	m.AssertExpectations(t)
}

func TestReconcileHandler_SinEmpresaReconciliaTodas(t *testing.T) {
	m := &reconcilerMock{}
	m.On("ReconcileAll", mock.Anything).
		Return([]*dto.ReconciliationReport{{CompanyID: "a"}, {CompanyID: "b"}}, nil).Once()

	task, err := jobs.NewReconcileTask("")
	require.NoError(t, err)
	require.NoError(t, jobs.NewReconcileHandler(m, zerolog.Nop()).ProcessTask(context.Background(), task))
	m.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestReconcileHandler_PayloadInvalidoNoReintenta(t *testing.T) {
	m := &reconcilerMock{}
	err := jobs.NewReconcileHandler(m, zerolog.Nop()).
		ProcessTask(context.Background(), asynq.NewTask(jobs.TypeReconcile, []byte("{no-json")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReconcileHandler_PropagaErrorParaReintento(t *testing.T) {
	m := &reconcilerMock{}
	boom := errors.New("db caída")
	m.On("Reconcile", mock.Anything, "c-1").Return(nil, boom).Once()

	task, _ := jobs.NewReconcileTask("c-1")
	err := jobs.NewReconcileHandler(m, zerolog.Nop()).ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
}

func TestNewMux_EnrutaTipo(t *testing.T) {
	m := &reconcilerMock{}
	m.On("ReconcileAll", mock.Anything).Return([]*dto.ReconciliationReport{}, nil).Once()

	mux := jobs.NewMux(m, zerolog.Nop())
	task, _ := jobs.NewReconcileTask("")
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	m.AssertExpectations(t)
}
