// Package blob provides byte-level object storage backends for uploaded
// files and their derived artifacts.
//
// Two implementations of the Storage interface are included: LocalStorage
// writes to a confined directory tree on the local filesystem, and S3Storage
// targets Amazon S3 or any S3-compatible service such as MinIO.
//
// Stored names are decoupled from user-supplied names: UniqueName produces a
// collision-resistant uuid-hex name preserving the original extension, and
// DatePath partitions objects under yyyy/mm/dd directories.
//
// # Local storage
//
//	storage, err := blob.NewLocalStorage(blob.LocalConfig{
//		BaseDir: "./data/files",
//		BaseURL: "/files/",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	name := blob.UniqueName("report.pdf")
//	obj, err := storage.Save(ctx, file, blob.DatePath(time.Now(), name))
//
// # S3 storage
//
//	storage, err := blob.NewS3Storage(ctx, blob.S3Config{
//		Bucket: "uploads",
//		Region: "us-east-1",
//	})
//
// Both backends reject paths that escape their root and clean up partial
// writes, so callers can treat a returned Object as durably committed.
package blob
