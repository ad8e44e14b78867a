package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"notemap-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ErrNotFound reports that a document does not exist. Callers must treat it
// as a normal outcome, not a transport failure.
var ErrNotFound = errors.New("document not found")

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, ownerID, id string) (*domain.Note, error)
	FindByMarkKey(ctx context.Context, ownerID, markKey string) (*domain.Note, error)
	List(ctx context.Context, ownerID string) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, ownerID, id string) error
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

// noteDocID scopes every document operation to the owner. A caller can only
// ever address documents inside its own partition.
func noteDocID(ownerID, noteID string) string {
	return fmt.Sprintf("note:%s:%s", ownerID, noteID)
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	_, err := db.Put(ctx, noteDocID(note.OwnerID, note.ID), note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	row := db.Get(ctx, noteDocID(ownerID, id))

	var note domain.Note
	if err := row.ScanDoc(&note); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return &note, nil
}

func (r *noteRepository) FindByMarkKey(ctx context.Context, ownerID, markKey string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id": ownerID,
			"mark.key": markKey,
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find note by mark key: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var note domain.Note
	if err := rows.ScanDoc(&note); err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	return &note, nil
}

func (r *noteRepository) List(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	// Notes share the database with user documents; image_refs is the
	// discriminating field.
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id": ownerID,
			"image_refs": map[string]interface{}{
				"$exists": true,
			},
		},
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.ScanDoc(&note); err != nil {
			continue
		}
		notes = append(notes, &note)
	}

	return notes, nil
}

// Update fully replaces the editable fields. The fetched map carries the
// CouchDB _rev, which is what lets the Put land on the current revision.
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(note.OwnerID, note.ID)

	var existingDoc map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch existing note for update: %w", err)
	}

	refs := make([]string, len(note.ImageRefs))
	for i, ref := range note.ImageRefs {
		refs[i] = ref.String()
	}

	existingDoc["text"] = note.Text
	existingDoc["image_refs"] = refs
	existingDoc["mark"] = note.Mark
	existingDoc["updated_at"] = note.UpdatedAt

	if note.VoiceRef.IsZero() {
		existingDoc["voice_ref"] = nil
	} else {
		existingDoc["voice_ref"] = note.VoiceRef.String()
	}

	_, err := db.Put(ctx, docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, ownerID, id string) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(ownerID, id)

	var existingDoc map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch note for delete: %w", err)
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(ctx, docID, rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
