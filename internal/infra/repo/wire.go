package repo

import (
	"go_virtual_mock/internal/infra/storage"

	"github.com/google/wire"
)

var RepoSet = wire.NewSet(
	NewProjectRepoConfig,
	storage.StorageSet,
	NewProjectRepoImpl,
)
