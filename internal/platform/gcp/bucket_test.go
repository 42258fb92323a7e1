package gcp

import "testing"

func TestResolveObjectStorageConfig(t *testing.T) {
	cases := []struct {
		name    string
		mode    string
		host    string
		want    ObjectStorageMode
		wantErr bool
	}{
		{"default gcs", "", "", ObjectStorageModeGCS, false},
		{"emulator inferred", "", "http://fake-gcs:4443/", ObjectStorageModeGCSEmulator, false},
		{"explicit gcs ignores host", "GCS", "http://fake-gcs:4443", ObjectStorageModeGCS, false},
		{"explicit emulator", "gcs_emulator", "http://fake-gcs:4443", ObjectStorageModeGCSEmulator, false},
		{"emulator missing host", "gcs_emulator", "", "", true},
		{"emulator bad host", "gcs_emulator", "fake-gcs:4443", "", true},
		{"unknown mode", "s3", "", "", true},
	}
	for _, tc := range cases {
		cfg, err := ResolveObjectStorageConfig(tc.mode, tc.host)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error, got cfg=%+v", tc.name, cfg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if cfg.Mode != tc.want {
			t.Fatalf("%s: mode want=%q got=%q", tc.name, tc.want, cfg.Mode)
		}
	}
}

func TestResolvePublicBaseURL(t *testing.T) {
	got, err := resolvePublicBaseURL(BucketConfig{PublicBaseURL: "http://localhost:4443/"})
	if err != nil || got != "http://localhost:4443" {
		t.Fatalf("override: got=%q err=%v", got, err)
	}
	got, err = resolvePublicBaseURL(BucketConfig{Storage: ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}})
	if err != nil || got != "http://fake-gcs:4443" {
		t.Fatalf("emulator: got=%q err=%v", got, err)
	}
	if _, err := resolvePublicBaseURL(BucketConfig{PublicBaseURL: "localhost:4443"}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name string
		bs   *bucketService
		key  string
		want string
	}{
		{
			name: "gcs default",
			bs:   &bucketService{bucket: "mood-images"},
			key:  "mood_images/a.png",
			want: "https://storage.googleapis.com/mood-images/mood_images/a.png",
		},
		{
			name: "cdn",
			bs:   &bucketService{bucket: "mood-images", cdnDomain: "img.example.com"},
			key:  "/mood_images/a.png",
			want: "https://img.example.com/mood_images/a.png",
		},
		{
			name: "public base",
			bs:   &bucketService{bucket: "mood-images", publicBaseURL: "http://localhost:4443"},
			key:  "mood_images/a.png",
			want: "http://localhost:4443/mood-images/mood_images/a.png",
		},
		{
			name: "emulator media endpoint",
			bs:   &bucketService{bucket: "mood-images", storageMode: ObjectStorageModeGCSEmulator, publicBaseURL: "http://localhost:4443"},
			key:  "mood_images/u/a.png",
			want: "http://localhost:4443/storage/v1/b/mood-images/o/mood_images%2Fu%2Fa.png?alt=media",
		},
	}
	for _, tc := range cases {
		if got := tc.bs.GetPublicURL(tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, ct := range []string{"image/png", "image/jpeg", "image/webp", "image/gif"} {
		if got := ContentTypeForKey("x" + ExtensionForContentType(ct)); got != ct {
			t.Fatalf("%s: got %q", ct, got)
		}
	}
	if got := ExtensionForContentType("application/octet-stream"); got != ".png" {
		t.Fatalf("default extension: got %q", got)
	}
}
