package cv

import "testing"

func TestSlotName(t *testing.T) {
	if got := SlotName(true); got != "main" {
		t.Fatalf("expected main, got %q", got)
	}
	if got := SlotName(false); got != "notMain" {
		t.Fatalf("expected notMain, got %q", got)
	}
}

func TestKeyResolverDeterministic(t *testing.T) {
	r := KeyResolver{FolderTemplate: "users/{0}/cv/"}

	if got := r.Folder("user-1"); got != "users/user-1/cv/" {
		t.Fatalf("unexpected folder: %q", got)
	}
	if got := r.SlotPrefix("user-1", true); got != "users/user-1/cv/main" {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if got := r.Key("user-1", true); got != "users/user-1/cv/main.pdf" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := r.Key("user-1", false); got != "users/user-1/cv/notMain.pdf" {
		t.Fatalf("unexpected key: %q", got)
	}

	// Same inputs always produce the same key.
	if r.Key("user-1", true) != r.Key("user-1", true) {
		t.Fatal("key resolution must be deterministic")
	}
}

func TestKeyResolverRoot(t *testing.T) {
	r := KeyResolver{FolderTemplate: "users/{0}/cv/"}
	if got := r.Root(); got != "users/" {
		t.Fatalf("unexpected root: %q", got)
	}

	flat := KeyResolver{FolderTemplate: "cv/"}
	if got := flat.Root(); got != "cv/" {
		t.Fatalf("unexpected root for template without placeholder: %q", got)
	}
}

func TestFilePath(t *testing.T) {
	got := FilePath("http://localhost:9000/", "cv-bucket", "users/user-1/cv/main.pdf")
	want := "http://localhost:9000/cv-bucket/users/user-1/cv/main.pdf"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
