package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pacific-clothing/personnel-api/internal/entity"
	"github.com/pacific-clothing/personnel-api/internal/sessions"
	"github.com/pacific-clothing/personnel-api/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type staticToken map[string]interface{}

func (t staticToken) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

type staticVerifier struct {
	accept string
}

func (f *staticVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if raw != f.accept {
		return nil, errors.New("bad token")
	}
	return staticToken{"sub": "tester"}, nil
}

func descByCollection(t *testing.T, collection string) entity.Descriptor {
	t.Helper()
	for _, d := range entity.Catalog() {
		if d.Collection == collection {
			return d
		}
	}
	t.Fatalf("no descriptor for %s", collection)
	return entity.Descriptor{}
}

func newRouter(t *testing.T, collection string, gate gin.HandlerFunc) (*gin.Engine, *entity.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := entity.NewMemoryRepository()
	r := gin.New()
	Register(r, descByCollection(t, collection), repo, gate)
	return r, repo
}

func do(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validEmployee() gin.H {
	return gin.H{
		"fullName":         "Jane Doe",
		"phoneNumber":      "912345678",
		"hireDate":         "2021-06-15",
		"department":       "Design",
		"employmentStatus": "active",
		"role":             "designer",
		"address":          "1 Main St",
	}
}

func TestEmployeeCRUDRoundTrip(t *testing.T) {
	r, _ := newRouter(t, "employees", nil)

	w := do(r, http.MethodPost, "/employees", validEmployee(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]
	require.Len(t, id, 24)

	w = do(r, http.MethodGet, "/employees/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Jane Doe", doc["fullName"])

	w = do(r, http.MethodGet, "/employees", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1)

	w = do(r, http.MethodDelete, "/employees/"+id, nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())

	w = do(r, http.MethodGet, "/employees/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "employee not found")
}

func TestMalformedIDNeverReachesStore(t *testing.T) {
	r, repo := newRouter(t, "employees", nil)

	w := do(r, http.MethodPost, "/employees", validEmployee(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	opsAfterCreate := repo.Ops()

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := do(r, m, "/employees/not-a-hex-id", validEmployee(), "")
		require.Equal(t, http.StatusBadRequest, w.Code, m)
		require.Contains(t, w.Body.String(), "invalid id", m)
	}
	require.Equal(t, opsAfterCreate, repo.Ops(), "store must not be touched for malformed ids")
}

func TestUnknownIDReturns404(t *testing.T) {
	r, _ := newRouter(t, "employees", nil)
	id := primitive.NewObjectID().Hex()

	w := do(r, http.MethodGet, "/employees/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/employees/"+id, gin.H{"role": "lead"}, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/employees/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationReportsSingleFirstViolation(t *testing.T) {
	r, repo := newRouter(t, "employees", nil)

	// two fields missing; only the first declared one is reported
	payload := validEmployee()
	delete(payload, "phoneNumber")
	delete(payload, "address")

	w := do(r, http.MethodPost, "/employees", payload, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "phoneNumber is required", resp["error"])
	require.Equal(t, 0, repo.Ops())
}

func TestBadJSONBodyRejected(t *testing.T) {
	r, repo := newRouter(t, "employees", nil)

	req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid request body")
	require.Equal(t, 0, repo.Ops())
}

func TestMergeReportsUpdatedThenUnchanged(t *testing.T) {
	r, _ := newRouter(t, "employees", nil)

	w := do(r, http.MethodPost, "/employees", validEmployee(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]

	w = do(r, http.MethodPatch, "/employees/"+id, gin.H{"role": "lead"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "employee updated")

	w = do(r, http.MethodPatch, "/employees/"+id, gin.H{"role": "lead"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "employee unchanged")

	// merge keeps the fields the sparse payload did not mention
	w = do(r, http.MethodGet, "/employees/"+id, nil, "")
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "lead", doc["role"])
	require.Equal(t, "Jane Doe", doc["fullName"])
}

func TestMergeWithNoKnownFieldsIsUnchanged(t *testing.T) {
	r, _ := newRouter(t, "employees", nil)

	w := do(r, http.MethodPost, "/employees", validEmployee(), "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]

	// empty body and unknown-fields-only body both validate to nothing to
	// write; that is success, not a store error
	w = do(r, http.MethodPatch, "/employees/"+id, gin.H{}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "employee unchanged")

	w = do(r, http.MethodPatch, "/employees/"+id, gin.H{"unknownField": 1}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "employee unchanged")

	// the absent-id contract still holds for an empty merge
	w = do(r, http.MethodPatch, "/employees/"+primitive.NewObjectID().Hex(), gin.H{}, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

type failingRepo struct {
	err error
}

func (f *failingRepo) List(ctx context.Context) ([]entity.Document, error) { return nil, f.err }
func (f *failingRepo) Get(ctx context.Context, id primitive.ObjectID) (entity.Document, error) {
	return nil, f.err
}
func (f *failingRepo) Create(ctx context.Context, value bson.M) (primitive.ObjectID, error) {
	return primitive.NilObjectID, f.err
}
func (f *failingRepo) Replace(ctx context.Context, id primitive.ObjectID, value bson.M) error {
	return f.err
}
func (f *failingRepo) Merge(ctx context.Context, id primitive.ObjectID, partial bson.M) (entity.UpdateOutcome, error) {
	return entity.OutcomeNoChange, f.err
}
func (f *failingRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return f.err }

func TestStoreErrorsBecomeOpaque500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &failingRepo{err: fmt.Errorf("list employees: %w", errors.New("connection reset by peer"))}
	r := gin.New()
	Register(r, descByCollection(t, "employees"), repo, nil)
	id := primitive.NewObjectID().Hex()

	cases := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/employees", nil},
		{http.MethodGet, "/employees/" + id, nil},
		{http.MethodPost, "/employees", validEmployee()},
		{http.MethodPut, "/employees/" + id, validEmployee()},
		{http.MethodDelete, "/employees/" + id, nil},
	}
	for _, tc := range cases {
		w := do(r, tc.method, tc.path, tc.body, "")
		require.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", tc.method, tc.path)
		require.Contains(t, w.Body.String(), "internal server error")
		require.NotContains(t, w.Body.String(), "connection reset", "store detail must not leak")
	}
}

func TestUnacknowledgedWriteIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, descByCollection(t, "employees"), &failingRepo{err: entity.ErrWriteRejected}, nil)

	w := do(r, http.MethodPost, "/employees", validEmployee(), "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal server error")
	require.NotContains(t, w.Body.String(), "rejected")
}

func TestLegacyReplaceRequiresFullPayload(t *testing.T) {
	r, _ := newRouter(t, "personal_info", nil)

	full := gin.H{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@pacific.example",
		"favColor":  "green",
		"birthday":  "1990-02-01",
	}
	w := do(r, http.MethodPost, "/personal_info", full, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]

	// replace takes a create-valid payload; sparse is rejected
	w = do(r, http.MethodPut, "/personal_info/"+id, gin.H{"favColor": "blue"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "firstName is required")

	full["favColor"] = "blue"
	w = do(r, http.MethodPut, "/personal_info/"+id, full, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "personal_info updated")

	w = do(r, http.MethodGet, "/personal_info/"+id, nil, "")
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "blue", doc["favColor"])
}

func TestProtectedMutationsRequireToken(t *testing.T) {
	sessions.SetBlacklistClient(nil)
	gate := middleware.Authorize(&staticVerifier{accept: "good-token"})
	r, repo := newRouter(t, "departments", gate)

	dept := gin.H{
		"departmentName": "Design",
		"manager":        "Ana",
		"totalEmployees": 12,
		"location":       "Lisbon",
	}

	// reads stay open
	w := do(r, http.MethodGet, "/departments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/departments", dept, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/departments", dept, "wrong-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// unauthorized requests never reach validation or the store
	w = do(r, http.MethodPost, "/departments", gin.H{"bogus": true}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotContains(t, w.Body.String(), "required")
	require.Equal(t, 1, repo.Ops(), "only the open list call may touch the store")

	w = do(r, http.MethodPost, "/departments", dept, "good-token")
	require.Equal(t, http.StatusCreated, w.Code)

	// auth gate runs before id decoding
	w = do(r, http.MethodDelete, "/departments/not-a-hex-id", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotContains(t, w.Body.String(), "invalid id")
}
