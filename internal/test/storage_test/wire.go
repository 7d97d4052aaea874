//go:build wireinject
// +build wireinject

package storagetest

import (
	"go_virtual_mock/internal/infra/storage"

	"github.com/google/wire"
)

func InitializeStorageTest() (*StorageTestSuite, error) {
	wire.Build(storage.StorageSet, NewStorageTestSuite)
	return &StorageTestSuite{}, nil
}
