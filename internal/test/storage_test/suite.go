package storagetest

import "go_virtual_mock/internal/infra/storage"

// StorageTestSuite 使用 MOCK_CONFIG_PATH 指向的真实 MySQL/Redis
type StorageTestSuite struct {
	projectStorage storage.ProjectStorageIface
	eventStorage   storage.EventStorageIface
	projectCache   storage.ProjectCacheIface
}

func NewStorageTestSuite(p storage.ProjectStorageIface, e storage.EventStorageIface, c storage.ProjectCacheIface) *StorageTestSuite {
	return &StorageTestSuite{projectStorage: p, eventStorage: e, projectCache: c}
}
