package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

func newUpload(name string) *domain.Upload {
	return &domain.Upload{Filename: name, Data: []byte(name)}
}

func TestVersionService_CreateAssignsNextNumber(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	v2, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("a-v2.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
	assert.Contains(t, v2.BlobKey, "document_versions/")
	require.NotNil(t, v2.CreatedBy)
	assert.Equal(t, "alice", *v2.CreatedBy)

	stored, err := f.docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, *stored.CurrentVersionID)

	versions, err := f.versionSvc.List(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber, "newest first")
	assert.Equal(t, 1, versions[1].VersionNumber)

	assert.False(t, f.lock.IsHeld(versionLockName(doc.ID)), "lock is released")
}

// createConcurrently starts uploads version creates at the same moment and
// returns the numbers they were given
func createConcurrently(t *testing.T, svc driving.VersionService, owner, documentID string, uploads int) []int {
	t.Helper()

	var wg sync.WaitGroup
	start := make(chan struct{})
	numbers := make([]int, uploads)
	errs := make([]error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, err := svc.Create(context.Background(), owner, documentID, newUpload(fmt.Sprintf("v%d.pdf", i)))
			errs[i] = err
			if err == nil {
				numbers[i] = v.VersionNumber
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Ints(numbers)
	return numbers
}

func TestVersionService_CreateConcurrent(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	// The store reads the next number and inserts in separate steps, so only
	// the per-document lock keeps concurrent creates apart
	f.versions.SplitCreate(10 * time.Millisecond)

	const uploads = 8
	numbers := createConcurrently(t, f.versionSvc, owner, doc.ID, uploads)
	for i, n := range numbers {
		assert.Equal(t, i+2, n, "numbers are unique and dense")
	}
	assert.Equal(t, uploads+1, f.versions.Count(doc.ID))
}

func TestVersionService_CreateConcurrentWithoutLock(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	unlocked := NewVersionService(VersionServiceConfig{
		Documents: f.docs,
		Versions:  f.versions,
		Blobs:     f.blobs,
		Logger:    discardLogger(),
	})
	f.versions.SplitCreate(20 * time.Millisecond)

	const uploads = 8
	numbers := createConcurrently(t, unlocked, owner, doc.ID, uploads)

	distinct := make(map[int]bool)
	for _, n := range numbers {
		distinct[n] = true
	}
	assert.Less(t, len(distinct), uploads, "unserialized creates collide on a number")
}

func TestVersionService_CreateLockTimeout(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	f.lock.SetLockHeld(versionLockName(doc.ID), time.Minute)

	_, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("b.pdf"))
	assert.ErrorIs(t, err, domain.ErrVersionLocked)
	assert.Equal(t, 1, f.versions.Count(doc.ID))
	assert.Equal(t, 1, f.blobs.Len(), "upload of a failed version is discarded")
}

func TestVersionService_CreateRequiresOwnershipAndFile(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	other := f.addUser(t, "bob")
	doc := f.upload(t, owner, "a.pdf")

	_, err := f.versionSvc.Create(context.Background(), other, doc.ID, newUpload("b.pdf"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.versionSvc.Create(context.Background(), owner, doc.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 1, f.versions.Count(doc.ID))
}

func TestVersionService_DeleteSoleVersion(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	err := f.versionSvc.Delete(context.Background(), owner, doc.ID, *doc.CurrentVersionID)
	assert.ErrorIs(t, err, domain.ErrSoleVersion)
	assert.Equal(t, 1, f.versions.Count(doc.ID))
}

func TestVersionService_DeleteCurrentPromotesHighest(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	v2, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("b.pdf"))
	require.NoError(t, err)
	v3, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("c.pdf"))
	require.NoError(t, err)

	require.NoError(t, f.versionSvc.Delete(context.Background(), owner, doc.ID, v3.ID))

	stored, err := f.docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, *stored.CurrentVersionID)
	assert.False(t, f.blobs.Has(v3.BlobKey))

	// max+1 hands the deleted highest number out again
	v4, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("d.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 3, v4.VersionNumber)
}

func TestVersionService_NumberingAfterDeletes(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")
	ctx := context.Background()

	v2, err := f.versionSvc.Create(ctx, owner, doc.ID, newUpload("b.pdf"))
	require.NoError(t, err)
	_, err = f.versionSvc.Create(ctx, owner, doc.ID, newUpload("c.pdf"))
	require.NoError(t, err)

	// A gap below the maximum is left alone
	require.NoError(t, f.versionSvc.Delete(ctx, owner, doc.ID, v2.ID))
	v4, err := f.versionSvc.Create(ctx, owner, doc.ID, newUpload("d.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 4, v4.VersionNumber)

	// Deleting the highest version frees its number
	require.NoError(t, f.versionSvc.Delete(ctx, owner, doc.ID, v4.ID))
	again, err := f.versionSvc.Create(ctx, owner, doc.ID, newUpload("e.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 4, again.VersionNumber)

	versions, err := f.versionSvc.List(ctx, owner, doc.ID)
	require.NoError(t, err)
	var numbers []int
	for _, v := range versions {
		numbers = append(numbers, v.VersionNumber)
	}
	assert.Equal(t, []int{4, 3, 1}, numbers)
}

func TestVersionService_DeleteOlderKeepsCurrent(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")
	v1 := *doc.CurrentVersionID

	v2, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("b.pdf"))
	require.NoError(t, err)

	require.NoError(t, f.versionSvc.Delete(context.Background(), owner, doc.ID, v1))

	stored, err := f.docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, *stored.CurrentVersionID)
	assert.True(t, f.blobs.Has(doc.BlobKey), "original upload stays with the document")
}

func TestVersionService_Scoping(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	other := f.addUser(t, "bob")
	doc := f.upload(t, owner, "a.pdf")
	otherDoc := f.upload(t, other, "b.pdf")
	vid := *doc.CurrentVersionID

	_, err := f.versionSvc.Get(context.Background(), other, doc.ID, vid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.versionSvc.Get(context.Background(), owner, otherDoc.ID, vid)
	assert.ErrorIs(t, err, domain.ErrNotFound, "version of another document")

	_, err = f.versionSvc.List(context.Background(), other, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.versionSvc.Delete(context.Background(), other, "", vid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v, err := f.versionSvc.Get(context.Background(), owner, "", vid)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, v.DocumentID)

	all, err := f.versionSvc.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, vid, all[0].ID)
}

func TestVersionService_OpenFile(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "alice")
	doc := f.upload(t, owner, "a.pdf")

	v2, err := f.versionSvc.Create(context.Background(), owner, doc.ID, newUpload("b.pdf"))
	require.NoError(t, err)

	file, err := f.versionSvc.OpenFile(context.Background(), owner, doc.ID, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", file.Name)
	assert.Equal(t, []byte("b.pdf"), file.Data)

	file, err = f.versionSvc.OpenFile(context.Background(), owner, "", *doc.CurrentVersionID)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", file.Name)
	assert.Equal(t, []byte("%PDF-1.4 a.pdf"), file.Data)
}
