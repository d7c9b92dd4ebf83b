package services

import (
	"path/filepath"
	"testing"

	"dust-keeper/internal/models"
)

func openTestStore(t *testing.T) *GameStore {
	t.Helper()
	store, err := OpenGameStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGameStoreAddAndGet(t *testing.T) {
	store := openTestStore(t)

	game := &models.Game{
		Title:    "Sample Game",
		Platform: "dlsite",
		DlsiteId: "RJ123456",
		Folder:   "/games/RJ123456",
		Tags:     []string{"rpg", "fantasy"},
	}
	if err := store.AddGame(game); err != nil {
		t.Fatal(err)
	}
	if game.Id == 0 {
		t.Fatal("AddGame should assign a row id")
	}

	got, err := store.GetGame(game.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Sample Game" || got.DlsiteId != "RJ123456" {
		t.Errorf("Unexpected row: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "rpg" {
		t.Errorf("Tags not round-tripped: %v", got.Tags)
	}
}

func TestGameStoreFolderIsUnique(t *testing.T) {
	store := openTestStore(t)

	first := &models.Game{Title: "A", Platform: "local", Folder: "/games/x"}
	if err := store.AddGame(first); err != nil {
		t.Fatal(err)
	}
	dup := &models.Game{Title: "B", Platform: "local", Folder: "/games/x"}
	if err := store.AddGame(dup); err == nil {
		t.Error("Duplicate folder should be rejected")
	}
}

func TestGameStoreGetByFolder(t *testing.T) {
	store := openTestStore(t)

	game := &models.Game{Title: "A", Platform: "local", Folder: "/games/a"}
	if err := store.AddGame(game); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetGameByFolder("/games/a")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Id != game.Id {
		t.Errorf("Expected the inserted row, got %+v", got)
	}

	// 未知目录返回nil而不是错误
	got, err = store.GetGameByFolder("/games/unknown")
	if err != nil || got != nil {
		t.Errorf("Unknown folder should yield nil, got %+v / %v", got, err)
	}
}

func TestGameStoreFindByDlsiteID(t *testing.T) {
	store := openTestStore(t)

	game := &models.Game{Title: "W", Platform: "dlsite", DlsiteId: "RJ777777", Folder: "/games/w"}
	if err := store.AddGame(game); err != nil {
		t.Fatal(err)
	}

	got, err := store.FindByDlsiteID("RJ777777")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Id != game.Id {
		t.Errorf("Expected the inserted row, got %+v", got)
	}

	got, err = store.FindByDlsiteID("RJ000000")
	if err != nil || got != nil {
		t.Errorf("Unknown work id should yield nil, got %+v / %v", got, err)
	}
}

func TestGameStoreUpdateAndDelete(t *testing.T) {
	store := openTestStore(t)

	game := &models.Game{Title: "Old", Platform: "local", Folder: "/games/u"}
	if err := store.AddGame(game); err != nil {
		t.Fatal(err)
	}

	game.Title = "New"
	game.Circle = "Some Circle"
	if err := store.UpdateGame(game); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetGame(game.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" || got.Circle != "Some Circle" {
		t.Errorf("Update not persisted: %+v", got)
	}

	if err := store.DeleteGame(game.Id); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetGame(game.Id); err == nil {
		t.Error("Deleted row should not be found")
	}
	if err := store.DeleteGame(game.Id); err == nil {
		t.Error("Deleting an unknown id should be an error")
	}
}

func TestGameStoreRecordPlay(t *testing.T) {
	store := openTestStore(t)

	game := &models.Game{Title: "P", Platform: "local", Folder: "/games/p"}
	if err := store.AddGame(game); err != nil {
		t.Fatal(err)
	}

	if err := store.RecordPlay(game.Id); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordPlay(game.Id); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetGame(game.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayCount != 2 {
		t.Errorf("Expected play count 2, got %d", got.PlayCount)
	}
	if got.LastPlayed.IsZero() {
		t.Error("LastPlayed should be stamped")
	}
}

func TestGameStoreListOrdersByTitle(t *testing.T) {
	store := openTestStore(t)

	for _, title := range []string{"zebra", "Apple", "mango"} {
		game := &models.Game{Title: title, Platform: "local", Folder: "/games/" + title}
		if err := store.AddGame(game); err != nil {
			t.Fatal(err)
		}
	}

	games, err := store.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 3 {
		t.Fatalf("Expected 3 games, got %d", len(games))
	}
	if games[0].Title != "Apple" || games[1].Title != "mango" || games[2].Title != "zebra" {
		t.Errorf("Unexpected order: %s, %s, %s", games[0].Title, games[1].Title, games[2].Title)
	}
}
