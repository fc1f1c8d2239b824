// Package backup periodically copies the sqlite store file to a Google
// Cloud Storage bucket. It is inert when the store runs on postgres or
// when no bucket is configured.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/obiesoto/herald/shared"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type Uploader struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

func NewUploader(config *shared.GoogleConfig) (*Uploader, error) {
	var client *storage.Client
	var err error

	if config.ApplicationCredentials != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(config.ApplicationCredentials))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, errors.Wrap(err, "backup.NewUploader")
	}

	return &Uploader{
		storageClient: client,
		bucket:        config.Storage.Bucket,
		prefix:        config.Storage.Prefix,
	}, nil
}

// UploadStoreFile copies the sqlite file to the bucket, named by prefix
// and date so successive runs don't clobber each other.
func (u *Uploader) UploadStoreFile(storeFilePath string) error {
	f, err := os.Open(storeFilePath)
	if err != nil {
		return errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	objectName := fmt.Sprintf("%s/%s-%s", u.prefix, time.Now().UTC().Format("2006-01-02"), filepath.Base(storeFilePath))
	wc := u.storageClient.Bucket(u.bucket).Object(objectName).NewWriter(ctx)

	if _, err = io.Copy(wc, f); err != nil {
		return errors.Wrap(err, "io.Copy")
	}

	return errors.Wrap(wc.Close(), "Writer.Close")
}
