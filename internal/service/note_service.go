package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"notemap-server/internal/domain"
	"notemap-server/internal/media"
	"notemap-server/internal/repository"
	"notemap-server/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NoteNotifier pushes note change events to the owner's other devices. The
// originating device is excluded so a client never echoes its own edit.
type NoteNotifier interface {
	NotifyNoteChange(ownerID, deviceID, event string, note *domain.NoteResponse)
}

const (
	EventNoteCreated = "note_created"
	EventNoteUpdated = "note_updated"
	EventNoteDeleted = "note_deleted"
)

// NoteService reconciles an edited note against the document and blob
// stores: local media is uploaded, removed media is cleaned up best-effort,
// and the document write always lands before any deletion is attempted.
type NoteService struct {
	repo     repository.NoteRepository
	storage  storage.BlobStorage
	media    media.Source
	notifier NoteNotifier
}

func NewNoteService(
	repo repository.NoteRepository,
	blobs storage.BlobStorage,
	source media.Source,
	notifier NoteNotifier,
) *NoteService {
	return &NoteService{
		repo:     repo,
		storage:  blobs,
		media:    source,
		notifier: notifier,
	}
}

func (s *NoteService) Create(ctx context.Context, ownerID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	imageRefs, err := s.resolveRefs(ctx, domain.ParseAssetRefs(req.ImageRefs), storage.FolderImages)
	if err != nil {
		return nil, err
	}

	voiceRef, err := s.resolveRef(ctx, domain.ParseAssetRef(req.VoiceRef), storage.FolderVoiceNotes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note := &domain.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Text:      req.Text,
		ImageRefs: imageRefs,
		VoiceRef:  voiceRef,
		Mark:      req.Mark,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	response := toNoteResponse(note)

	if s.notifier != nil {
		s.notifier.NotifyNoteChange(ownerID, req.DeviceID, EventNoteCreated, response)
	}

	return response, nil
}

// Update replaces the note's text, image refs, mark and voice ref, then
// deletes the assets the user removed. Deletions only start once the new
// document state is durable; each one is best-effort and a failure never
// fails the update, it only shows up in CleanupErrors.
func (s *NoteService) Update(ctx context.Context, ownerID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	existing, err := s.repo.FindByID(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	imageRefs, err := s.resolveRefs(ctx, domain.ParseAssetRefs(req.ImageRefs), storage.FolderImages)
	if err != nil {
		return nil, err
	}

	voiceRef, err := s.resolveRef(ctx, domain.ParseAssetRef(req.VoiceRef), storage.FolderVoiceNotes)
	if err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:        noteID,
		OwnerID:   ownerID,
		Text:      req.Text,
		ImageRefs: imageRefs,
		VoiceRef:  voiceRef,
		Mark:      req.Mark,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	response := toNoteResponse(note)
	response.CleanupErrors = s.deleteAssets(ctx, domain.ParseAssetRefs(req.DeletedRefs))

	if s.notifier != nil {
		s.notifier.NotifyNoteChange(ownerID, req.DeviceID, EventNoteUpdated, response)
	}

	return response, nil
}

func (s *NoteService) GetByID(ctx context.Context, ownerID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return toNoteResponse(note), nil
}

func (s *NoteService) GetByMarkKey(ctx context.Context, ownerID, markKey string) (*domain.NoteResponse, error) {
	note, err := s.repo.FindByMarkKey(ctx, ownerID, markKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return toNoteResponse(note), nil
}

func (s *NoteService) List(ctx context.Context, ownerID string) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var responses []*domain.NoteResponse
	for _, n := range notes {
		responses = append(responses, toNoteResponse(n))
	}

	return responses, nil
}

// Delete removes the note's assets best-effort, then deletes the document.
// The document delete is the authoritative "gone" signal and is attempted
// regardless of how the asset deletions went.
func (s *NoteService) Delete(ctx context.Context, ownerID, noteID string, deviceID string) ([]string, error) {
	note, err := s.repo.FindByID(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	refs := append([]domain.AssetRef{}, note.ImageRefs...)
	if !note.VoiceRef.IsZero() {
		refs = append(refs, note.VoiceRef)
	}
	cleanupErrs := s.deleteAssets(ctx, refs)

	if err := s.repo.Delete(ctx, ownerID, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return cleanupErrs, ErrNoteNotFound
		}
		return cleanupErrs, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNoteChange(ownerID, deviceID, EventNoteDeleted, &domain.NoteResponse{ID: noteID})
	}

	return cleanupErrs, nil
}

// resolveRefs uploads every local reference and passes remote ones through
// untouched. Uploads run concurrently, but each result is written back at
// its original index, so completion order can never reorder the sequence.
func (s *NoteService) resolveRefs(ctx context.Context, refs []domain.AssetRef, folder string) ([]domain.AssetRef, error) {
	if len(refs) == 0 {
		return refs, nil
	}

	resolved := make([]domain.AssetRef, len(refs))
	g, gctx := errgroup.WithContext(ctx)

	for i, ref := range refs {
		if !ref.IsLocal() {
			resolved[i] = ref
			continue
		}

		i, ref := i, ref
		g.Go(func() error {
			url, err := s.uploadLocal(gctx, ref, folder)
			if err != nil {
				return err
			}
			resolved[i] = domain.RemoteRef(url)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resolved, nil
}

func (s *NoteService) resolveRef(ctx context.Context, ref domain.AssetRef, folder string) (domain.AssetRef, error) {
	if !ref.IsLocal() {
		return ref, nil
	}

	url, err := s.uploadLocal(ctx, ref, folder)
	if err != nil {
		return domain.AssetRef{}, err
	}

	return domain.RemoteRef(url), nil
}

func (s *NoteService) uploadLocal(ctx context.Context, ref domain.AssetRef, folder string) (string, error) {
	rc, err := s.media.Open(ref.Path())
	if err != nil {
		return "", fmt.Errorf("failed to read staged media %s: %w", ref.Path(), err)
	}
	defer rc.Close()

	return s.storage.Upload(ctx, folder, uuid.New().String(), rc)
}

// deleteAssets removes blobs best-effort. Failures are logged and collected
// for observability; they never propagate to the caller as an error.
func (s *NoteService) deleteAssets(ctx context.Context, refs []domain.AssetRef) []string {
	var failures []string
	for _, ref := range refs {
		if !ref.IsRemote() {
			continue
		}
		if err := s.storage.Delete(ctx, ref.URL()); err != nil {
			log.Printf("failed to delete asset %s: %v", ref.URL(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", ref.URL(), err))
		}
	}
	return failures
}

func toNoteResponse(note *domain.Note) *domain.NoteResponse {
	return &domain.NoteResponse{
		ID:        note.ID,
		Text:      note.Text,
		ImageRefs: note.ImageRefs,
		VoiceRef:  note.VoiceRef,
		Mark:      note.Mark,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
