package model

import (
	"testing"
	"time"
)

func TestFormatGeneratedAt(t *testing.T) {
	t.Parallel()

	t.Run("omits fraction when microseconds are zero", func(t *testing.T) {
		t.Parallel()

		ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
		if got := FormatGeneratedAt(ts); got != "2026-03-04T05:06:07" {
			t.Errorf("unexpected format %q", got)
		}
	})

	t.Run("writes six digit fraction", func(t *testing.T) {
		t.Parallel()

		ts := time.Date(2026, 3, 4, 5, 6, 7, 120000*1000, time.Local)
		if got := FormatGeneratedAt(ts); got != "2026-03-04T05:06:07.120000" {
			t.Errorf("unexpected format %q", got)
		}
	})

	t.Run("sub-microsecond precision is dropped", func(t *testing.T) {
		t.Parallel()

		ts := time.Date(2026, 3, 4, 5, 6, 7, 999, time.Local)
		if got := FormatGeneratedAt(ts); got != "2026-03-04T05:06:07" {
			t.Errorf("unexpected format %q", got)
		}
	})
}

func TestDemoDataCollection(t *testing.T) {
	t.Parallel()

	d := &DemoData{
		Projects:     []*Document{NewDocument()},
		ImageRecords: []*Document{NewDocument(), NewDocument()},
		Analyses:     []*Document{},
	}

	for name, want := range map[string]int{
		CollectionProjects:     1,
		CollectionImageRecords: 2,
		CollectionAnalyses:     0,
	} {
		docs, ok := d.Collection(name)
		if !ok {
			t.Errorf("collection %q not found", name)
			continue
		}
		if len(docs) != want {
			t.Errorf("collection %q: expected %d docs, got %d", name, want, len(docs))
		}
	}

	if _, ok := d.Collection("unknown"); ok {
		t.Error("unknown collection must not be found")
	}
}

func TestBuildAccessors(t *testing.T) {
	t.Parallel()

	b := NewBuild("/tmp/demo")
	b.Photos = []*Photo{{Index: 2, Name: "obra2_a.jpg"}, {Index: 1, Name: "obra1_a.jpg"}}
	b.Outputs = []OutputFile{
		{Name: "demo_data_complete.json", Size: 100},
		{Name: "projects.bin.json", Size: 20},
	}

	if p := b.Photo(1); p == nil || p.Name != "obra1_a.jpg" {
		t.Errorf("unexpected photo for index 1: %+v", p)
	}
	if p := b.Photo(3); p != nil {
		t.Errorf("expected nil photo for index 3, got %+v", p)
	}
	if o, ok := b.Output("projects.bin.json"); !ok || o.Size != 20 {
		t.Errorf("unexpected output %+v (ok=%v)", o, ok)
	}
	if got := b.TotalOutputSize(); got != 120 {
		t.Errorf("expected total 120, got %d", got)
	}
	if b.Succeeded() {
		t.Error("build without data must not report success")
	}
}

func TestPhotoEXIFCamera(t *testing.T) {
	t.Parallel()

	tests := []struct {
		exif PhotoEXIF
		want string
	}{
		{PhotoEXIF{Make: "Canon", Model: "EOS R6"}, "Canon EOS R6"},
		{PhotoEXIF{Model: "Pixel 8"}, "Pixel 8"},
		{PhotoEXIF{Make: "Apple"}, "Apple"},
		{PhotoEXIF{}, ""},
	}
	for _, tt := range tests {
		if got := tt.exif.Camera(); got != tt.want {
			t.Errorf("Camera() = %q, want %q", got, tt.want)
		}
	}
}
