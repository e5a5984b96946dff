package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fzscan/internal/app/infra/persistence/db"
)

// Open 内存 sqlite 库（仅测试使用），已完成迁移
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// 内存库每个连接独立，固定单连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
