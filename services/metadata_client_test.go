package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractWorkID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"RJ123456", "RJ123456"},
		{"[RJ123456] Some Game (v1.02)", "RJ123456"},
		{"re141033_folder", "RE141033"},
		{"VJ009214 title", "VJ009214"},
		{"BJ338847", "BJ338847"},
		{"RG12345 circle id", "RG12345"},
		{"Just A Normal Folder", ""},
		{"RJ123 too short", ""},
	}
	for _, tc := range cases {
		if got := ExtractWorkID(tc.in); got != tc.want {
			t.Errorf("ExtractWorkID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFetchWork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("workno") != "RJ123456" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"workno": "RJ123456",
			"work_name": "Sample Game",
			"maker_name": "Sample Circle",
			"intro_s": "A short description",
			"image_url": "//img.example.com/cover.jpg",
			"genres": [{"name": "RPG"}, {"name": "Fantasy"}]
		}]`))
	}))
	defer server.Close()

	mc := NewMetadataClient(server.URL, "en_US", 5*time.Second)
	info, err := mc.FetchWork("RJ123456")
	if err != nil {
		t.Fatal(err)
	}
	if info.Title != "Sample Game" || info.Circle != "Sample Circle" {
		t.Errorf("Unexpected work info: %+v", info)
	}
	if info.CoverImage != "https://img.example.com/cover.jpg" {
		t.Errorf("Protocol-relative image URL should be normalized, got %q", info.CoverImage)
	}
	if len(info.Tags) != 2 || info.Tags[0] != "RPG" {
		t.Errorf("Genres not mapped to tags: %v", info.Tags)
	}
}

func TestFetchWorkUnknownId(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	mc := NewMetadataClient(server.URL, "en_US", 5*time.Second)
	if _, err := mc.FetchWork("RJ999999"); err == nil {
		t.Error("Unknown work id should be an error")
	}
}

func TestFetchWorkRejectsInvalidId(t *testing.T) {
	mc := NewMetadataClient("http://127.0.0.1:1", "en_US", time.Second)
	if _, err := mc.FetchWork("not-an-id"); err == nil {
		t.Error("Invalid work id should fail before any request")
	}
}
