package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequenceXML() string {
	clip := func(kind string, start, duration, in int64) string {
		return fmt.Sprintf(`<Element><%[1]s><Name>c</Name><MediaRef>m</MediaRef><Start>%[2]d</Start><Duration>%[3]d</Duration><In>%[4]d</In></%[1]s></Element>`,
			kind, start, duration, in)
	}
	video := clip("Sm2TiVideoClip", 0, 96, 0) + clip("Sm2TiVideoClip", 96, 104, 200)
	audio := clip("Sm2TiAudioClip", 0, 96, 0) + clip("Sm2TiAudioClip", 96, 104, 200)
	return `<?xml version="1.0" encoding="UTF-8"?>
<Sm2SequenceContainer>
<VideoTrackVec><Element><Sm2TiTrack><Items>` + video + `</Items></Sm2TiTrack></Element></VideoTrackVec>
<AudioTrackVec><Element><Sm2TiTrack><Items>` + audio + `</Items></Sm2TiTrack></Element></AudioTrackVec>
</Sm2SequenceContainer>`
}

func drpBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"project.xml":           "<Project/>",
		"SeqContainer/seq1.xml": sequenceXML(),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func multipartBody(t *testing.T, filename string, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{CacheDir: t.TempDir()})
}

func doProcess(t *testing.T, s *Server, filename string, file []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, file, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "drp-jl-cut-api")
}

func TestProcess_AppliesJCuts(t *testing.T) {
	s := newTestServer(t)
	w := doProcess(t, s, "My Project.drp", drpBytes(t), map[string]string{
		"cut_type": "J",
		"offset":   "8",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Cuts-Applied"))
	assert.Equal(t, "1", w.Header().Get("X-Total-Boundaries"))
	assert.Equal(t, "J", w.Header().Get("X-Cut-Type"))
	assert.Equal(t, "8", w.Header().Get("X-Offset"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "My Project (J cuts added).drp")
	// Response body is a zip archive.
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "body is not a zip")
}

func TestProcess_DryRunReturnsReport(t *testing.T) {
	s := newTestServer(t)
	w := doProcess(t, s, "p.drp", drpBytes(t), map[string]string{
		"cut_type": "L",
		"offset":   "8",
		"dry_run":  "true",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		Summary struct {
			Applied    int `json:"applied"`
			Boundaries int `json:"boundaries"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.Applied)
	assert.Equal(t, 1, report.Summary.Boundaries)
}

func TestProcess_Validation(t *testing.T) {
	s := newTestServer(t)
	drp := drpBytes(t)

	tests := []struct {
		name     string
		filename string
		file     []byte
		fields   map[string]string
		code     int
		want     string
	}{
		{
			name:   "missing file",
			fields: map[string]string{"cut_type": "J", "offset": "8"},
			code:   http.StatusBadRequest,
			want:   "file field is required",
		},
		{
			name:     "bad cut type",
			filename: "p.drp",
			file:     drp,
			fields:   map[string]string{"cut_type": "X", "offset": "8"},
			code:     http.StatusBadRequest,
			want:     "cut_type",
		},
		{
			name:     "bad offset",
			filename: "p.drp",
			file:     drp,
			fields:   map[string]string{"cut_type": "J", "offset": "0"},
			code:     http.StatusBadRequest,
			want:     "offset",
		},
		{
			name:     "wrong extension",
			filename: "p.zip",
			file:     drp,
			fields:   map[string]string{"cut_type": "J", "offset": "8"},
			code:     http.StatusBadRequest,
			want:     ".drp",
		},
		{
			name:     "corrupt archive",
			filename: "p.drp",
			file:     []byte("not a zip"),
			fields:   map[string]string{"cut_type": "J", "offset": "8"},
			code:     http.StatusBadRequest,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doProcess(t, s, tt.filename, tt.file, tt.fields)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.want != "" {
				assert.Contains(t, w.Body.String(), tt.want)
			}
		})
	}
}

func TestProcess_UploadTooLarge(t *testing.T) {
	s := New(Config{CacheDir: t.TempDir(), MaxUploadBytes: 16})
	w := doProcess(t, s, "p.drp", drpBytes(t), map[string]string{
		"cut_type": "J",
		"offset":   "8",
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestProcess_NothingApplied(t *testing.T) {
	// Offset larger than the backward handle: the only boundary is infeasible.
	s := newTestServer(t)
	w := doProcess(t, s, "p.drp", drpBytes(t), map[string]string{
		"cut_type": "J",
		"offset":   "99",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "could not apply")
}
