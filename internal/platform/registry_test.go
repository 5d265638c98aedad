package platform

import "testing"

func TestLookupKnownPlatforms(t *testing.T) {
	for _, id := range []string{"twitch-emote", "discord-emoji", "discord-sticker", "slack-emoji", "twitter-gif", "stream-avatar"} {
		spec, ok := Lookup(id)
		if !ok {
			t.Fatalf("missing platform %q", id)
		}
		if spec.ID != id {
			t.Fatalf("lookup %q returned %q", id, spec.ID)
		}
		if spec.Width <= 0 || spec.Height <= 0 || spec.MaxBytes <= 0 {
			t.Fatalf("platform %q has incomplete spec: %+v", id, spec)
		}
		if !spec.SpriteSheet() && spec.MaxAttempts < 10 {
			t.Fatalf("platform %q attempt bound too low: %d", id, spec.MaxAttempts)
		}
	}
	if _, ok := Lookup("myspace"); ok {
		t.Fatal("unexpected platform")
	}
}

func TestLaddersKeepFloorsSane(t *testing.T) {
	for _, spec := range Registry() {
		if spec.SpriteSheet() {
			continue
		}
		l := spec.Ladder
		if l.FPSFloor < 1 || l.ColorFloor < 2 {
			t.Fatalf("platform %q ladder floors invalid: %+v", spec.ID, l)
		}
		if l.ScaleFactor <= 0 || l.ScaleFactor >= 1 {
			t.Fatalf("platform %q scale factor must shrink: %v", spec.ID, l.ScaleFactor)
		}
		if l.MinWidth < 2 || l.MinHeight < 2 {
			t.Fatalf("platform %q dimension floors invalid: %+v", spec.ID, l)
		}
	}
}

func TestTargetBoxClampsToSpec(t *testing.T) {
	spec, _ := Lookup("twitch-emote")
	w, h := spec.TargetBox(1920, 1080)
	if w != 112 || h != 112 {
		t.Fatalf("fixed-box platform should ignore aspect: got %dx%d", w, h)
	}
}

func TestTargetBoxWideAspect(t *testing.T) {
	spec, _ := Lookup("twitter-gif")

	// 16:9 source widens the box.
	w, h := spec.TargetBox(1920, 1080)
	if h != 480 {
		t.Fatalf("height should stay at spec: %d", h)
	}
	if w <= 480 || w%2 != 0 {
		t.Fatalf("expected widened even width, got %d", w)
	}

	// Extreme aspect is clamped to MaxAspect.
	w, _ = spec.TargetBox(4000, 500)
	if max := int(spec.MaxAspect * 480); w > max {
		t.Fatalf("width %d exceeds aspect clamp %d", w, max)
	}

	// Narrow sources keep the square box.
	w, h = spec.TargetBox(1080, 1920)
	if w != 480 || h != 480 {
		t.Fatalf("narrow source should keep spec box: %dx%d", w, h)
	}
}

func TestSpriteSheetFlag(t *testing.T) {
	spec, _ := Lookup("stream-avatar")
	if !spec.SpriteSheet() {
		t.Fatal("stream-avatar should take the sprite-sheet branch")
	}
	if spec.MaxFrames != 64 {
		t.Fatalf("unexpected frame budget: %d", spec.MaxFrames)
	}
	if spec.Container.Extension() != "png" {
		t.Fatalf("sprite sheets are png, got %q", spec.Container.Extension())
	}
}

func TestContainerExtension(t *testing.T) {
	if ContainerGIF.Extension() != "gif" || ContainerAPNG.Extension() != "apng" {
		t.Fatal("unexpected container extensions")
	}
}
