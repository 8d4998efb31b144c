// Package dbtest 为测试提供内存 SQLite 数据库
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"foodgram/internal/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New 返回已迁移并写入默认标签的独立内存数据库
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:foodgram_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	conn, err := db.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	// 单连接避免 shared cache 表锁
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return conn
}
