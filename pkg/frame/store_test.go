package frame_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jt828/go-observer/pkg/frame"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Save(t *testing.T) {
	t.Run("writes the frame under id and key", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/logs", 0o755))
		store := frame.NewLocalStore("/logs", frame.WithFs(fs))
		f := closedFrame(t, "fetch_user", &seqKeys{})

		require.NoError(t, store.Save(f))

		path := filepath.Join("/logs", "fetch_user", "k1")
		assert.Equal(t, path, store.Path(f))
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		got, err := frame.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, f.Key, got.Key)
		assert.Equal(t, "fetch_user", got.ID)
	})

	t.Run("missing root fails", func(t *testing.T) {
		store := frame.NewLocalStore("/nowhere", frame.WithFs(afero.NewMemMapFs()))

		err := store.Save(closedFrame(t, "a", &seqKeys{}))

		assert.ErrorIs(t, err, frame.ErrLogRootMissing)
	})

	t.Run("root that is a file fails", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/logs", []byte("x"), 0o644))
		store := frame.NewLocalStore("/logs", frame.WithFs(fs))

		err := store.Save(closedFrame(t, "a", &seqKeys{}))

		assert.ErrorIs(t, err, frame.ErrLogRootMissing)
	})

	t.Run("separators in the id stay inside the root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/logs", 0o755))
		store := frame.NewLocalStore("/logs", frame.WithFs(fs))
		f := closedFrame(t, "../etc/passwd", &seqKeys{})

		require.NoError(t, store.Save(f))

		assert.Equal(t, filepath.Join("/logs", ".._etc_passwd", "k1"), store.Path(f))
	})

	t.Run("empty root defaults to the system log dir", func(t *testing.T) {
		assert.Equal(t, frame.DefaultLogRoot, frame.NewLocalStore("").Root())
	})

	t.Run("writes to the real filesystem", func(t *testing.T) {
		root := t.TempDir()
		store := frame.NewLocalStore(root)
		f := closedFrame(t, "job", &seqKeys{})

		require.NoError(t, store.Save(f))

		exists, err := afero.Exists(afero.NewOsFs(), filepath.Join(root, "job", "k1"))
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

type recordingQueue struct {
	records [][]byte
	err     error
}

func (q *recordingQueue) Enqueue(_ context.Context, record []byte) error {
	if q.err != nil {
		return q.err
	}
	q.records = append(q.records, record)
	return nil
}

func TestPersister_Persist(t *testing.T) {
	newStore := func(t *testing.T) (afero.Fs, *frame.LocalStore) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/logs", 0o755))
		return fs, frame.NewLocalStore("/logs", frame.WithFs(fs))
	}

	t.Run("routine frames go to the local store", func(t *testing.T) {
		fs, store := newStore(t)
		q := &recordingQueue{}
		f := closedFrame(t, "report", &seqKeys{})

		frame.NewPersister(store, q, nil).Persist(context.Background(), f, false)

		exists, err := afero.Exists(fs, store.Path(f))
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Empty(t, q.records)
	})

	t.Run("critical frames go to the queue only", func(t *testing.T) {
		fs, store := newStore(t)
		q := &recordingQueue{}
		f := closedFrame(t, "payment", &seqKeys{})

		frame.NewPersister(store, q, nil).Persist(context.Background(), f, true)

		require.Len(t, q.records, 1)
		got, err := frame.Unmarshal(q.records[0])
		require.NoError(t, err)
		assert.Equal(t, f.Key, got.Key)

		exists, err := afero.Exists(fs, store.Path(f))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("failed enqueue does not fall back to the store", func(t *testing.T) {
		fs, store := newStore(t)
		q := &recordingQueue{err: errors.New("broker down")}
		f := closedFrame(t, "payment", &seqKeys{})

		assert.NotPanics(t, func() {
			frame.NewPersister(store, q, nil).Persist(context.Background(), f, true)
		})

		exists, err := afero.Exists(fs, store.Path(f))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("store failures are swallowed", func(t *testing.T) {
		store := frame.NewLocalStore("/missing", frame.WithFs(afero.NewMemMapFs()))

		assert.NotPanics(t, func() {
			frame.NewPersister(store, nil, nil).Persist(context.Background(), closedFrame(t, "a", &seqKeys{}), false)
		})
	})

	t.Run("critical frame without queue is dropped", func(t *testing.T) {
		fs, store := newStore(t)
		f := closedFrame(t, "payment", &seqKeys{})

		frame.NewPersister(store, nil, nil).Persist(context.Background(), f, true)

		exists, err := afero.Exists(fs, store.Path(f))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
