package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"eraport-ingestion/internal/config"
	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/db/memdb"
	"eraport-ingestion/internal/ingest"
	"eraport-ingestion/internal/model"
	pkgerrors "eraport-ingestion/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	store   *memdb.DB
	router  *gin.Engine
	tempDir string
}

func newEnv(t *testing.T, store db.Store, mem *memdb.DB) *env {
	t.Helper()
	cfg, err := config.Parse([]byte("app:\n  version: test\ndatabase:\n  driver: memory\n"))
	require.NoError(t, err)
	cfg.Upload.TempDir = t.TempDir()

	svc := ingest.NewService(store, nil, nil)
	return &env{store: mem, router: NewRouter(NewHandler(svc, cfg)), tempDir: cfg.Upload.TempDir}
}

// seed adds students 1001..1000+n in a class whose curriculum has Matematika,
// and an active period for 2025/2026 semester 1.
func seed(n int) *memdb.DB {
	store := memdb.New()
	level := store.AddGradeLevel()
	classID := store.AddClass(model.Class{Nama: "1A", TingkatanID: &level})
	for i := 1; i <= n; i++ {
		store.AddStudent(model.Student{NIS: fmt.Sprintf("%d", 1000+i), Nama: "Siswa", KelasID: &classID})
	}
	store.AddSubject("Matematika", level)
	master := store.AddMasterYear("2025/2026")
	store.AddPeriod(master, "1", true)
	return store
}

func workbook(t *testing.T, examRows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Template Nilai Ujian"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	rows := append([][]interface{}{{"NIS", "Nama", "Mata Pelajaran", "Kitab", "Nilai", "Semester", "Tahun Ajaran"}}, examRows...)
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartRequest(t *testing.T, url, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ThenDraftsThenConfirm(t *testing.T) {
	mem := seed(2)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/upload", "nilai.xlsx", workbook(t,
		[]interface{}{"1001", "Ahmad", "Matematika", "", 85, "1", "2025/2026"},
		[]interface{}{"1002", "Budi", "Matematika", "", 70, "3", "2025/2026"},
	), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.assertTempDirEmpty(t)

	var uploaded model.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	require.NotEmpty(t, uploaded.UploadBatchID)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/raport/drafts/"+uploaded.UploadBatchID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var drafts []model.DraftRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drafts))
	require.Len(t, drafts, 2)
	assert.True(t, drafts[0].IsValid)
	assert.False(t, drafts[1].IsValid)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/v1/raport/drafts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var batches []model.DraftBatchSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batches))
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].TotalRows)
	assert.Equal(t, 1, batches[0].ValidRows)

	body, err := json.Marshal(model.ConfirmRequest{
		UploadBatchID: uploaded.UploadBatchID,
		ValidatedData: []model.StudentAggregate{drafts[0].Data},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/raport/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = e.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var confirmed model.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, 1, confirmed.ProcessedCount)
	require.Len(t, mem.ExamGrades(), 1)
	assert.Equal(t, 85.0, *mem.ExamGrades()[0].Nilai)
}

func TestUpload_MissingFile(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/upload", "", nil, map[string]string{"note": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestUpload_NotAWorkbookRemovesTempFile(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/upload", "nilai.xlsx", []byte("not a zip"), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e.assertTempDirEmpty(t)
}

func TestUpload_WrongExtension(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/upload", "nilai.csv", []byte("a,b"), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrafts_UnknownBatch(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/v1/raport/drafts/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirm_RejectsEmptyPayload(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	for _, body := range []string{`{`, `{"validatedData": []}`, `{"validatedData": [{"nama": "tanpa nis"}]}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/raport/confirm", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := e.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

var errConnectionLost = errors.New("invalid connection")

type failingStore struct {
	*memdb.DB
	failAt int
	calls  int
}

func (s *failingStore) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	return s.DB.WithTx(ctx, func(repo db.Repository) error {
		return fn(&failingRepo{Repository: repo, store: s})
	})
}

type failingRepo struct {
	db.Repository
	store *failingStore
}

func (r *failingRepo) UpsertExamGrade(ctx context.Context, g *model.ExamGrade) error {
	r.store.calls++
	if r.store.calls == r.store.failAt {
		return errConnectionLost
	}
	return r.Repository.UpsertExamGrade(ctx, g)
}

func TestConfirm_FatalErrorIs500AndRollsBack(t *testing.T) {
	mem := seed(10)
	e := newEnv(t, &failingStore{DB: mem, failAt: 5}, mem)

	var data []model.StudentAggregate
	for i := 1; i <= 10; i++ {
		data = append(data, model.StudentAggregate{
			NIS: fmt.Sprintf("%d", 1000+i), Semester: "1", TahunAjaran: "2025/2026",
			NilaiUjian: []model.ExamEntry{{MataPelajaran: "Matematika", Nilai: "80"}},
		})
	}
	body, err := json.Marshal(model.ConfirmRequest{ValidatedData: data})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/raport/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := e.do(req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "invalid connection")
	assert.Empty(t, mem.ExamGrades())
}

func TestCompleteImport(t *testing.T) {
	mem := seed(1)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/import/complete", "nilai.xlsx", workbook(t,
		[]interface{}{"1001", "Ahmad", "MATEMATIKA", "", 85, "1", "2025/2026"},
		[]interface{}{"", "Kosong", "Matematika", "", 85, "1", "2025/2026"},
	), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	e.assertTempDirEmpty(t)

	var resp model.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.SheetCounter{Success: 1, Skipped: 1}, resp.Results.NilaiUjian)
	require.Len(t, mem.ExamGrades(), 1)
	assert.Equal(t, 85.0, *mem.ExamGrades()[0].Nilai)
}

func TestCompleteImport_BadHint(t *testing.T) {
	mem := seed(1)
	e := newEnv(t, mem, mem)

	rec := e.do(multipartRequest(t, "/api/v1/raport/import/complete", "nilai.xlsx", workbook(t),
		map[string]string{"tahun_ajaran_id": "dua"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	mem := seed(0)
	e := newEnv(t, mem, mem)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"eraport-ingestion","version":"test"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("wrap: %w", pkgerrors.ErrBatchLocked)))
	assert.Equal(t, http.StatusNotFound, statusFor(pkgerrors.ErrBatchNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
