package media

import (
	"reflect"
	"testing"
)

func TestGenericLadder_ShapeAndOrder(t *testing.T) {
	l := GenericLadder()
	if len(l) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(l))
	}
	if l[0].Label != "4K (2160p)" {
		t.Fatalf("expected highest resolution first, got %q", l[0].Label)
	}
	if l[len(l)-1].Label != AudioOnlyLabel {
		t.Fatalf("expected audio only last, got %q", l[len(l)-1].Label)
	}
	for _, opt := range l {
		if opt.SizeEstimate() != "unknown" {
			t.Fatalf("generic ladder sizes must be unknown, got %q", opt.SizeEstimate())
		}
	}
}

func TestMerge_KnownSizeReplacesPlaceholder(t *testing.T) {
	l := GenericLadder()
	merged := l.Merge(QualityOption{Label: "1080p HD", Container: "mp4", SizeBytes: 120 << 20})

	opt, ok := merged.Find("1080p HD")
	if !ok {
		t.Fatalf("1080p HD missing after merge")
	}
	if opt.SizeBytes != 120<<20 {
		t.Fatalf("expected known size to replace placeholder, got %d", opt.SizeBytes)
	}
	if len(merged) != len(l) {
		t.Fatalf("merge must not duplicate labels: %d vs %d", len(merged), len(l))
	}
}

func TestMerge_UnknownNeverReplacesKnown(t *testing.T) {
	l := Ladder{{Label: "720p HD", Container: "webm", SizeBytes: 50 << 20}}
	merged := l.Merge(QualityOption{Label: "720p HD", Container: "mp4"})

	opt, _ := merged.Find("720p HD")
	if opt.SizeBytes != 50<<20 {
		t.Fatalf("unknown size must not replace known, got %+v", opt)
	}
}

func TestMerge_Mp4BeatsOtherContainerAtEqualConfidence(t *testing.T) {
	l := Ladder{{Label: "720p HD", Container: "webm"}}
	merged := l.Merge(QualityOption{Label: "720p HD", Container: "mp4"})

	opt, _ := merged.Find("720p HD")
	if opt.Container != "mp4" {
		t.Fatalf("expected mp4 to win, got %q", opt.Container)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	incoming := []QualityOption{
		{Label: "1080p HD", Container: "mp4", SizeBytes: 100},
		{Label: "480p", Container: "webm", SizeBytes: 40},
		{Label: AudioOnlyLabel, Container: "mp3", SizeBytes: 10},
	}
	once := GenericLadder().Merge(incoming...)
	twice := once.Merge(incoming...)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMerge_NewLabelsSortIntoPlace(t *testing.T) {
	l := Ladder{{Label: "360p", Container: "mp4"}, {Label: AudioOnlyLabel, Container: "mp3"}}
	merged := l.Merge(QualityOption{Label: "1080p HD", Container: "mp4", SizeBytes: 1})

	if merged[0].Label != "1080p HD" {
		t.Fatalf("expected 1080p first, got %q", merged[0].Label)
	}
	if merged[len(merged)-1].Label != AudioOnlyLabel {
		t.Fatalf("expected audio last, got %q", merged[len(merged)-1].Label)
	}
}

func TestHeightForLabel(t *testing.T) {
	cases := map[string]int{
		"1080p HD":   1080,
		"4K (2160p)": 2160,
		"1440p (2K)": 1440,
		"480p":       480,
		"Audio Only": 0,
		"best":       0,
	}
	for label, want := range cases {
		if got := HeightForLabel(label); got != want {
			t.Errorf("HeightForLabel(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestLabelForHeight(t *testing.T) {
	if got := LabelForHeight(2160); got != "4K (2160p)" {
		t.Errorf("got %q", got)
	}
	if got := LabelForHeight(1080); got != "1080p HD" {
		t.Errorf("got %q", got)
	}
	if got := LabelForHeight(240); got != "360p" {
		t.Errorf("got %q", got)
	}
}
