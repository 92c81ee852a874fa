package uploads

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"greenguardian/db"
	"greenguardian/internal/objectstore"
	"greenguardian/models"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const (
	maxUploadRetries = 2
	uploadRetryDelay = 300 * time.Millisecond
)

// InitUpload issues one signed ticket per manifest slot. All paths for
// a submission share one generated folder; each object gets its own
// uuid plus the extension derived from the original filename.
// The manifest must already have passed ValidateManifest.
func InitUpload(ctx context.Context, store objectstore.ObjectStore, track string, m *models.InitUploadRequest) (*models.InitUploadResponse, error) {
	folder := "submissions/" + uuid.NewString()

	signed := func(bucket, name string) (*models.UploadTicket, error) {
		path := fmt.Sprintf("%s/%s.%s", folder, uuid.NewString(), Ext(name))
		token, err := store.CreateSignedUploadURL(ctx, bucket, path)
		if err != nil {
			return nil, err
		}
		return &models.UploadTicket{Bucket: bucket, Path: path, Token: token}, nil
	}

	resp := &models.InitUploadResponse{Folder: folder}
	var err error

	if resp.KeyVisual, err = signed(BucketKeyVisual, m.KeyVisual.Name); err != nil {
		return nil, err
	}
	if resp.BidDocument, err = signed(BucketBidDocument, m.BidDocument.Name); err != nil {
		return nil, err
	}
	if resp.ProjectDocumentation, err = signed(BucketProjectDocumentation, m.ProjectDocumentation.Name); err != nil {
		return nil, err
	}

	if track == db.TrackLGU {
		if resp.AuthorizationForm, err = signed(BucketAuthorizationForm, m.AuthorizationForm.Name); err != nil {
			return nil, err
		}
	} else {
		if resp.BusinessPermit, err = signed(BucketBusinessPermit, m.BusinessPermit.Name); err != nil {
			return nil, err
		}
		if resp.DTISec, err = signed(BucketDTISec, m.DTISec.Name); err != nil {
			return nil, err
		}
	}

	for _, f := range m.Supporting {
		t, err := signed(BucketSupporting, f.Name)
		if err != nil {
			return nil, err
		}
		resp.Supporting = append(resp.Supporting, *t)
	}

	return resp, nil
}

// File is one local file staged for upload.
type File struct {
	ContentType string
	Data        []byte
}

// Files pairs with the tickets of an InitUploadResponse, slot by slot.
type Files struct {
	AuthorizationForm    *File
	BusinessPermit       *File
	DTISec               *File
	KeyVisual            *File
	BidDocument          *File
	ProjectDocumentation *File
	Supporting           []File
}

// UploadAll pushes every staged file against its ticket. Slots upload
// concurrently; each slot retries on its own before the first failed
// slot aborts the rest. Objects that already landed are left in place
// and never cleaned up here.
func UploadAll(ctx context.Context, store objectstore.ObjectStore, tickets *models.InitUploadResponse, files *Files) error {
	g, ctx := errgroup.WithContext(ctx)

	enqueue := func(t *models.UploadTicket, f *File) {
		if t == nil || f == nil {
			return
		}
		g.Go(func() error {
			return uploadWithRetry(ctx, store, *t, f)
		})
	}

	enqueue(tickets.AuthorizationForm, files.AuthorizationForm)
	enqueue(tickets.BusinessPermit, files.BusinessPermit)
	enqueue(tickets.DTISec, files.DTISec)
	enqueue(tickets.KeyVisual, files.KeyVisual)
	enqueue(tickets.BidDocument, files.BidDocument)
	enqueue(tickets.ProjectDocumentation, files.ProjectDocumentation)

	for i := range tickets.Supporting {
		if i >= len(files.Supporting) {
			break
		}
		enqueue(&tickets.Supporting[i], &files.Supporting[i])
	}

	return g.Wait()
}

// linearBackoff waits base on the first retry, 2*base on the second,
// and so on.
func linearBackoff(base time.Duration) retry.Backoff {
	var attempt int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n := atomic.AddInt64(&attempt, 1)
		return base * time.Duration(n), false
	})
}

func uploadWithRetry(ctx context.Context, store objectstore.ObjectStore, t models.UploadTicket, f *File) error {
	b := retry.WithMaxRetries(maxUploadRetries, linearBackoff(uploadRetryDelay))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := store.UploadToSignedURL(ctx, t.Bucket, t.Path, t.Token, f.ContentType, bytes.NewReader(f.Data))
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
