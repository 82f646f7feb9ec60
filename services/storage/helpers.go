package storage

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"

	"github.com/workstackhq/workstack/interfaces"
	"github.com/workstackhq/workstack/services/storage/aws_client"
)

// NewS3StorageService creates a StorageService backed by AWS S3.
func NewS3StorageService(awsRegion, accessKeyID, accessKeySecret, bucketName, cdnDomain string, isPublic bool) interfaces.StorageService {
	client := aws_client.NewS3Client(&aws.Config{
		Region:      aws.String(awsRegion),
		Credentials: credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
	})
	return NewStorageService(client, StorageConfig{
		BucketName: bucketName,
		IsPublic:   isPublic,
		CDNDomain:  cdnDomain,
	})
}

// NewR2StorageService creates a StorageService backed by Cloudflare R2,
// which speaks the S3 API behind an account-scoped endpoint.
func NewR2StorageService(accountID, accessKeyID, accessKeySecret, bucketName, cdnDomain string, isPublic bool) interfaces.StorageService {
	client := aws_client.NewS3Client(&aws.Config{
		Endpoint:         aws.String("https://" + accountID + ".r2.cloudflarestorage.com"),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	return NewStorageService(client, StorageConfig{
		BucketName: bucketName,
		IsPublic:   isPublic,
		CDNDomain:  cdnDomain,
	})
}
