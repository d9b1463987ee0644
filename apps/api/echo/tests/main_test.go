package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/schedule"
	textgensvc "github.com/trezcool/darasa/services/textgen"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

var (
	conf *core.Config
	db   *inmemdb.DB
	app  *Server

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:   true,
		Env:        "TEST",
		AppName:    "Darasa",
		SecretKey:  "secret",
		TimeFormat: "Jan 2, 15:04",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
		Schedule: core.ScheduleConfig{
			LookaheadWindow: 7 * 24 * time.Hour,
			ReminderLead:    24 * time.Hour,
			PrepLead:        48 * time.Hour,
		},
	}

	// set up store & repos
	db, _ = inmemdb.Open()
	catalogSvc := course.NewService(inmemdb.NewCourseRepository(db))

	// set up services
	logger := testutil.NewLogger()
	textSvc := textgensvc.NewStaticService()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	sessions := schedule.NewManager(
		func(facultyID string) *schedule.Service {
			return schedule.NewService(facultyID, catalogSvc, textSvc, logger, validate, conf)
		},
		logger,
	)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Sessions:   sessions,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getFacultyToken(t *testing.T, facultyID string) string {
	claims := NewFacultyClaims(conf, facultyID, facultyID, facultyID+"@test.cd")
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getFacultyToken(): %v", err)
	}
	return token
}

func getStudentToken(t *testing.T) string {
	claims := NewFacultyClaims(conf, "stud-1", "stud", "stud@test.cd")
	claims.IsTeacher = false
	claims.IsStudent = true
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getStudentToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
