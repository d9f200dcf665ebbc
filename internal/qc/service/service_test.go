package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/draft"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/bitfantasy/nimo-qc/internal/qc/testutil"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	dimensionalPath = "/api/dimensional-inspection"
	advancePath     = "/api/department-progress/update-department"
	roleUpdatePath  = "/api/department-progress/update-role"
)

type memLogs struct {
	mu   sync.Mutex
	logs []entity.SubmissionLog
}

func (m *memLogs) Create(_ context.Context, l *entity.SubmissionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memLogs) List(_ context.Context, _ repository.SubmissionFilter) ([]entity.SubmissionLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.SubmissionLog(nil), m.logs...), int64(len(m.logs)), nil
}

type memPartCache struct {
	parts []foundryapi.MasterPart
}

func (c *memPartCache) Get(context.Context) ([]foundryapi.MasterPart, error) {
	if c.parts == nil {
		return nil, repository.ErrNotFound
	}
	return c.parts, nil
}

func (c *memPartCache) Set(_ context.Context, parts []foundryapi.MasterPart) error {
	c.parts = parts
	return nil
}

type fixture struct {
	svc     *FormService
	fake    *testutil.FakeFoundry
	logs    *memLogs
	objects *repository.MemoryObjectStore
	hub     *sse.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fake:    testutil.NewFakeFoundry(t),
		logs:    &memLogs{},
		objects: repository.NewMemoryObjectStore(),
		hub:     sse.NewHub(nil),
	}
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f.svc = NewFormService(f.fake.Client(), repository.NewMemorySessionStore(time.Hour), zap.NewNop(),
		WithSubmissionLog(f.logs),
		WithPrintArchive(nil, f.objects),
		WithHub(f.hub),
		WithMasterPartCache(&memPartCache{}),
		WithClock(func() time.Time { return clock }),
	)
	return f
}

var (
	inspector = Actor{Username: "inspector", Role: entity.RoleUser, DepartmentID: entity.DepartmentQuality}
	hod       = Actor{Username: "hod.quality", Role: entity.RoleHOD, DepartmentID: entity.DepartmentQuality}
)

func findRow(t *testing.T, v *SessionView, gridName, label string) forms.RowView {
	t.Helper()
	for _, g := range v.Form.Grids {
		if g.Name != gridName {
			continue
		}
		for _, r := range g.Rows {
			if r.Label == label {
				return r
			}
		}
	}
	t.Fatalf("row %q not found in %s", label, gridName)
	return forms.RowView{}
}

func fillDimensional(t *testing.T, svc *FormService, actor Actor, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.UpdateFields(ctx, actor, id, FieldsPatch{Fields: map[string]any{
		"inspection_date": "2026-03-02",
		"casting_weight":  12.5,
		"bunch_weight":    "60",
	}})
	require.NoError(t, err)
	var v *SessionView
	for i := 0; i < 3; i++ {
		v, err = svc.AddColumn(ctx, actor, id, "cavity_rows", "")
		require.NoError(t, err)
	}
	length := findRow(t, v, "cavity_rows", "Overall Length (mm)")
	_, err = svc.SetCells(ctx, actor, id, "cavity_rows", []CellEdit{
		{RowID: length.ID, Column: 0, Value: "120.5"},
		{RowID: length.ID, Column: 2, Value: "121"},
	})
	require.NoError(t, err)
}

func TestDimensionalSubmitEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	events := &sse.Client{ID: "screen", Events: make(chan sse.Event, 4)}
	f.hub.Register(events)

	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	assert.Equal(t, draft.StateEditing, v.State)
	assert.False(t, v.Locked)
	assert.Equal(t, "203.0.113.9", v.PublicIP)

	fillDimensional(t, f.svc, inspector, v.ID)

	v, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StatePreviewing, v.State)
	require.NotNil(t, v.Preview)

	res, err := f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", res.Redirect)
	assert.Equal(t, entity.ActionSubmit, res.Action)
	assert.Equal(t, draft.StateSubmitted, res.State)
	assert.Equal(t, "TR-1001", res.TrialID)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, 1, f.fake.Count("POST", dimensionalPath))
	assert.Equal(t, 1, f.fake.Count("PUT", roleUpdatePath))
	assert.Zero(t, f.fake.Count("PUT", dimensionalPath))
	assert.Zero(t, f.fake.Count("PUT", advancePath))

	body := f.fake.LastBody("POST", dimensionalPath)
	assert.Equal(t, "4", body["cavities"])
	assert.Equal(t, "83.33", body["yield"])
	assert.Nil(t, body["trial_id"])
	assert.Contains(t, body, "pattern_code")
	assert.Nil(t, body["pattern_code"])

	rows := body["cavity_rows"].([]any)
	var lengthValues []any
	for _, r := range rows {
		row := r.(map[string]any)
		if row["label"] == "Overall Length (mm)" {
			lengthValues = row["values"].([]any)
		}
	}
	assert.Equal(t, []any{"120.5", nil, "121", nil}, lengthValues)

	role := f.fake.LastBody("PUT", roleUpdatePath)
	assert.Equal(t, "TR-1001", role["trial_id"])
	assert.EqualValues(t, entity.DepartmentQuality, role["current_department_id"])
	assert.Equal(t, entity.ApprovalCompleted, role["approval_status"])

	require.Len(t, f.logs.logs, 1)
	assert.Equal(t, entity.ActionSubmit, f.logs.logs[0].Action)
	assert.Equal(t, "TR-1001", f.logs.logs[0].TrialID)

	html, err := f.objects.Get(ctx, "prints/TR-1001/dimensional/"+v.ID+".html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "83.33")

	ev := <-events.Events
	assert.Equal(t, "trial_update", ev.EventType)
	assert.Contains(t, ev.Data, "TR-1001")

	got, err := f.svc.GetSession(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StateSubmitted, got.State)
}

func openReview(t *testing.T, f *fixture) *SessionView {
	t.Helper()
	f.fake.Progress = []foundryapi.Progress{{TrialID: "TR-7", DepartmentID: entity.DepartmentQuality, Username: hod.Username}}
	f.fake.SetRecord(dimensionalPath, "TR-7", map[string]any{
		"trial_id":        "TR-7",
		"inspection_date": "2026-03-01",
		"casting_weight":  10,
		"bunch_weight":    40,
	})
	v, err := f.svc.OpenSession(context.Background(), hod, entity.KindDimensional, "TR-7")
	require.NoError(t, err)
	return v
}

func TestHODApproveWithoutEditOnlyAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := openReview(t, f)
	assert.True(t, v.Locked)
	assert.True(t, v.RecordExists)
	assert.Equal(t, "10", v.Form.Fields["casting_weight"])

	_, err := f.svc.UpdateFields(ctx, hod, v.ID, FieldsPatch{Fields: map[string]any{"casting_weight": "11"}})
	assert.ErrorIs(t, err, gate.ErrReadOnly)

	_, err = f.svc.Preview(ctx, hod, v.ID)
	require.NoError(t, err)
	res, err := f.svc.Submit(ctx, hod, v.ID, SubmitRequest{Remarks: "dimensions within tolerance"})
	require.NoError(t, err)

	assert.Equal(t, entity.ActionApprove, res.Action)
	assert.Equal(t, entity.DepartmentMachineShop, res.NextDepartmentID)
	assert.Equal(t, []string{"GET " + dimensionalPath, "PUT " + advancePath}, withoutReads(f.fake.Calls(), dimensionalPath))
	assert.Zero(t, f.fake.Count("PUT", dimensionalPath))
	assert.Zero(t, f.fake.Count("POST", dimensionalPath))
	assert.Zero(t, f.fake.Count("PUT", roleUpdatePath))

	adv := f.fake.LastBody("PUT", advancePath)
	assert.Equal(t, "TR-7", adv["trial_id"])
	assert.EqualValues(t, entity.DepartmentMachineShop, adv["next_department_id"])
	assert.Equal(t, "dimensions within tolerance", adv["remarks"])
}

// withoutReads drops master part and progress lookups, keeping record calls.
func withoutReads(calls []string, recordPath string) []string {
	var out []string
	for _, c := range calls {
		if strings.HasPrefix(c, "GET ") && !strings.HasSuffix(c, recordPath) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func TestHODEditToggleKeepsEditsAndSavesBeforeAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := openReview(t, f)

	v, err := f.svc.ToggleEdit(ctx, hod, v.ID, true)
	require.NoError(t, err)
	assert.False(t, v.Locked)

	_, err = f.svc.UpdateFields(ctx, hod, v.ID, FieldsPatch{Fields: map[string]any{"casting_weight": "11"}})
	require.NoError(t, err)

	v, err = f.svc.ToggleEdit(ctx, hod, v.ID, false)
	require.NoError(t, err)
	assert.True(t, v.Locked)
	assert.Equal(t, "11", v.Form.Fields["casting_weight"])

	_, err = f.svc.ToggleEdit(ctx, hod, v.ID, true)
	require.NoError(t, err)
	_, err = f.svc.Preview(ctx, hod, v.ID)
	require.NoError(t, err)
	res, err := f.svc.Submit(ctx, hod, v.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.ActionApprove, res.Action)

	assert.Equal(t, []string{"GET " + dimensionalPath, "PUT " + dimensionalPath, "PUT " + advancePath},
		withoutReads(f.fake.Calls(), dimensionalPath))
	assert.EqualValues(t, 11, f.fake.LastBody("PUT", dimensionalPath)["casting_weight"])
}

func TestHODEditToggleOnlyWhileEditing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := openReview(t, f)

	_, err := f.svc.Preview(ctx, hod, v.ID)
	require.NoError(t, err)

	_, err = f.svc.ToggleEdit(ctx, hod, v.ID, true)
	assert.ErrorIs(t, err, ErrNotEditable)

	got, err := f.svc.GetSession(ctx, hod, v.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StatePreviewing, got.State)
	assert.False(t, got.EditEnabled)

	_, err = f.svc.BackToEdit(ctx, hod, v.ID)
	require.NoError(t, err)
	got, err = f.svc.ToggleEdit(ctx, hod, v.ID, true)
	require.NoError(t, err)
	assert.False(t, got.Locked)
}

func TestMissingSessionReleasesLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"bunch_weight": "50"}})
	require.NoError(t, err)
	_, held := f.svc.locks.Load(v.ID)
	assert.True(t, held)

	// the store dropped it, as a TTL expiry would
	require.NoError(t, f.svc.sessions.Delete(ctx, v.ID))

	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"bunch_weight": "60"}})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, held = f.svc.locks.Load(v.ID)
	assert.False(t, held)

	_, err = f.svc.UpdateFields(ctx, inspector, "no-such-session", FieldsPatch{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, held = f.svc.locks.Load("no-such-session")
	assert.False(t, held)
}

func TestHODMustBeAssigned(t *testing.T) {
	f := newFixture(t)
	f.fake.Progress = []foundryapi.Progress{{TrialID: "TR-7", DepartmentID: entity.DepartmentMelting, Username: hod.Username}}

	_, err := f.svc.OpenSession(context.Background(), hod, entity.KindDimensional, "TR-7")
	assert.ErrorIs(t, err, gate.ErrNotAssigned)
}

func TestApproveFailureReturnsToPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := openReview(t, f)
	_, err := f.svc.Preview(ctx, hod, v.ID)
	require.NoError(t, err)

	f.fake.Fail["PUT "+advancePath] = 500
	_, err = f.svc.Submit(ctx, hod, v.ID, SubmitRequest{})

	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Failed to approve. Please try again.", se.Message)
	var apiErr *foundryapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)

	got, err := f.svc.GetSession(ctx, hod, v.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StatePreviewing, got.State)
	assert.NotEmpty(t, got.LastError)
	assert.Empty(t, f.logs.logs)

	delete(f.fake.Fail, "PUT "+advancePath)
	res, err := f.svc.Submit(ctx, hod, v.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, draft.StateSubmitted, res.State)
}

func TestSubmitFailureOfRecordSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)

	f.fake.Fail["POST "+dimensionalPath] = 503
	_, err = f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SubmitFailedMessage, se.Message)
	assert.Zero(t, f.fake.Count("PUT", roleUpdatePath))
}

func TestSecondaryFailuresBecomeWarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.AddAttachment(ctx, inspector, v.ID, entity.Attachment{
		Section: "dimensions", FileName: "cmm.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	_, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)

	f.fake.Fail["POST /api/documents/upload"] = 500
	f.fake.Fail["PUT "+roleUpdatePath] = 502
	res, err := f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	require.NoError(t, err)

	assert.Equal(t, draft.StateSubmitted, res.State)
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, "/dashboard", res.Redirect)
}

func TestAttachmentUploadedWithSectionRemarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Remarks: map[string]string{"dimensions": "CMM report attached"}})
	require.NoError(t, err)
	_, err = f.svc.AddAttachment(ctx, inspector, v.ID, entity.Attachment{Section: "dimensions", FileName: "cmm.pdf", Data: []byte("x")})
	require.NoError(t, err)

	_, err = f.svc.AddAttachment(ctx, inspector, v.ID, entity.Attachment{Section: "general", FileName: "no.pdf"})
	assert.ErrorIs(t, err, forms.ErrUnknownField)

	v, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Contains(t, v.Preview.Values(), "cmm.pdf")

	_, err = f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	require.NoError(t, err)
	require.Len(t, f.fake.Uploads, 1)
	up := f.fake.Uploads[0]
	assert.Equal(t, "TR-1001", up.TrialID)
	assert.Equal(t, "dimensional/dimensions", up.Category)
	assert.Equal(t, "inspector", up.UploadedBy)
	assert.Equal(t, "CMM report attached", up.Remarks)
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)

	_, err = f.svc.claim(ctx, inspector, v.ID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	assert.ErrorIs(t, err, draft.ErrSubmitInFlight)
	assert.Zero(t, f.fake.Count("POST", dimensionalPath))
}

func TestSubmitWithoutPreviewIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	assert.ErrorIs(t, err, draft.ErrInvalidTransition)
}

func TestValidationBlocksPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	_, err = f.svc.Preview(ctx, inspector, v.ID)
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "inspection_date")

	got, err := f.svc.GetSession(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StateEditing, got.State)
}

func TestBackToEditReopensForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)
	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"bunch_weight": "50"}})
	assert.ErrorIs(t, err, ErrNotEditable)

	v, err = f.svc.BackToEdit(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Nil(t, v.Preview)

	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"bunch_weight": "50"}})
	require.NoError(t, err)
	v, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Contains(t, v.Preview.Values(), "100.00")
}

func TestPatternCodePrefillsForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.Parts = []foundryapi.MasterPart{{PatternCode: "PC-9", PartName: "Brake Drum"}}
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	v, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"pattern_code": "pc-9"}})
	require.NoError(t, err)
	assert.Equal(t, "Brake Drum", v.Form.Fields["part_name"])
	assert.Equal(t, "Brake Drum", v.PartName)

	_, err = f.svc.UpdateFields(ctx, inspector, v.ID, FieldsPatch{Fields: map[string]any{"part_name": "Drum"}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.fake.Count("GET", "/api/master-parts"))
}

func TestPrintNeedsPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	_, err = f.svc.Print(ctx, inspector, v.ID)
	assert.ErrorIs(t, err, ErrNoPreview)

	fillDimensional(t, f.svc, inspector, v.ID)
	v, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)

	html, err := f.svc.Print(ctx, inspector, v.ID)
	require.NoError(t, err)
	assert.Contains(t, string(html), "203.0.113.9")
	assert.Contains(t, string(html), "2026-03-02 09:00:00 UTC")
	assert.Contains(t, string(html), "83.33")

	wb, name, err := f.svc.Export(ctx, inspector, v.ID)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, "dimensional.xlsx", name)
}

func TestSessionsArePrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "")
	require.NoError(t, err)

	other := Actor{Username: "someone.else", Role: entity.RoleUser}
	_, err = f.svc.GetSession(ctx, other, v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, f.svc.CloseSession(ctx, inspector, v.ID))
	_, err = f.svc.GetSession(ctx, inspector, v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExistingRecordIsUpdatedByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fake.SetRecord(dimensionalPath, "TR-3", map[string]any{"trial_id": "TR-3", "inspection_date": "2026-02-01"})

	v, err := f.svc.OpenSession(ctx, inspector, entity.KindDimensional, "TR-3")
	require.NoError(t, err)
	assert.True(t, v.RecordExists)
	assert.False(t, v.Locked)

	fillDimensional(t, f.svc, inspector, v.ID)
	_, err = f.svc.Preview(ctx, inspector, v.ID)
	require.NoError(t, err)
	res, err := f.svc.Submit(ctx, inspector, v.ID, SubmitRequest{})
	require.NoError(t, err)

	assert.Equal(t, "TR-3", res.TrialID)
	assert.Equal(t, 1, f.fake.Count("PUT", dimensionalPath))
	assert.Zero(t, f.fake.Count("POST", dimensionalPath))
	assert.Equal(t, "TR-3", f.fake.LastBody("PUT", roleUpdatePath)["trial_id"])
}

func TestMasterPartSpecs(t *testing.T) {
	f := newFixture(t)
	f.fake.Parts = []foundryapi.MasterPart{{
		PatternCode:         "PC-1",
		ChemicalComposition: []byte(`"C: 3.4-3.8% Si: 2.2-2.6%"`),
		Tensile:             "450 310 10",
		Hardness:            "170-220",
	}}

	specs, err := f.svc.MasterPartSpecs(context.Background(), "PC-1")
	require.NoError(t, err)
	assert.NotEmpty(t, specs.Chemical.Get("c"))
	assert.Equal(t, "450", specs.Tensile.TensileStrength)

	_, err = f.svc.MasterPartSpecs(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPartNotFound)
}
