package domain

import "testing"

func TestAnnotateCaptionExtractsTagsAndMentions(t *testing.T) {
	t.Parallel()

	got := AnnotateCaption("New drop! #Streetwear #drop with @Alex.codes and #streetwear again", "IMAGE")
	want := "type:image tags:streetwear,drop mentions:alex.codes"
	if got != want {
		t.Fatalf("unexpected annotation: got %q want %q", got, want)
	}
}

func TestAnnotateCaptionEmptyCaption(t *testing.T) {
	t.Parallel()

	if got := AnnotateCaption("", "VIDEO"); got != "type:video" {
		t.Fatalf("expected media type only, got %q", got)
	}
	if got := AnnotateCaption("", ""); got != "" {
		t.Fatalf("expected empty annotation, got %q", got)
	}
}

func TestAnnotateCaptionDeterministic(t *testing.T) {
	t.Parallel()

	caption := "#a #b @c some text #a"
	first := AnnotateCaption(caption, "CAROUSEL_ALBUM")
	second := AnnotateCaption(caption, "CAROUSEL_ALBUM")
	if first != second {
		t.Fatalf("annotation not deterministic: %q vs %q", first, second)
	}
}
