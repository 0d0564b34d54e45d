package calclient

import (
	"context"
	"net/http"
	"sync"

	"github.com/gillohner/calky/internal/blobclient"
)

// fakeBlobStore is a stateful in-process blob store for unit tests. It
// mirrors the remote contract: ETag on reads, If-Match on writes compared
// against the fingerprint of the stored body. Hooks let tests inject
// transport failures and concurrent external writers.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	getErr map[string]error
	putErr map[string]error

	// beforePut runs before a PUT is evaluated, with the lock held, so a
	// test can simulate an external writer sneaking in ahead of a
	// conditional write.
	beforePut func(path string)

	getCount map[string]int
	putCount map[string]int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		blobs:    make(map[string][]byte),
		getErr:   make(map[string]error),
		putErr:   make(map[string]error),
		getCount: make(map[string]int),
		putCount: make(map[string]int),
	}
}

// set stores a blob directly, simulating state written by another client.
func (f *fakeBlobStore) set(path string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(path, body)
}

func (f *fakeBlobStore) setLocked(path string, body []byte) {
	f.blobs[path] = append([]byte(nil), body...)
}

func (f *fakeBlobStore) get(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.blobs[path]
	return body, ok
}

func (f *fakeBlobStore) Get(_ context.Context, path string) (*blobclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCount[path]++
	if err := f.getErr[path]; err != nil {
		return nil, err
	}
	body, ok := f.blobs[path]
	if !ok {
		return &blobclient.Response{StatusCode: http.StatusNotFound}, nil
	}
	return &blobclient.Response{
		StatusCode: http.StatusOK,
		Body:       append([]byte(nil), body...),
		ETag:       Fingerprint(string(body)),
	}, nil
}

func (f *fakeBlobStore) Put(_ context.Context, path string, _ string, body []byte, ifMatch string) (*blobclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.putCount[path]++
	if err := f.putErr[path]; err != nil {
		return nil, err
	}
	if f.beforePut != nil {
		f.beforePut(path)
	}

	if ifMatch != "" {
		current, exists := f.blobs[path]
		if !exists {
			return &blobclient.Response{StatusCode: http.StatusNotFound}, nil
		}
		if Fingerprint(string(current)) != ifMatch {
			return &blobclient.Response{StatusCode: http.StatusPreconditionFailed}, nil
		}
	}

	f.setLocked(path, body)
	return &blobclient.Response{
		StatusCode: http.StatusNoContent,
		ETag:       Fingerprint(string(body)),
	}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, path string) (*blobclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.blobs[path]; !ok {
		return &blobclient.Response{StatusCode: http.StatusNotFound}, nil
	}
	delete(f.blobs, path)
	return &blobclient.Response{StatusCode: http.StatusNoContent}, nil
}
