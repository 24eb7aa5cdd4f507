package main

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/cydxin/notify-sdk/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Usage:
//
//	NOTIFY_MYSQL_DSN=user:pass@tcp(127.0.0.1:3306)/notify?charset=utf8mb4&parseTime=true&loc=Local \
//	  go run ./scripts/print_gorm_schema.go
//
// 打印每个 ntf_ 表：GORM 解析出的字段/方言类型，以及库里实际的列，便于排查迁移差异。
func main() {
	dsn := os.Getenv("NOTIFY_MYSQL_DSN")
	if dsn == "" {
		log.Fatal("NOTIFY_MYSQL_DSN is empty")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	tables := []any{
		&models.NotificationTemplate{},
		&models.Notification{},
		&models.UserNotificationSettings{},
		&models.NotificationPreference{},
		&models.DeliveryAttempt{},
		&models.DeviceToken{},
	}
	cache := &sync.Map{}
	for _, m := range tables {
		s, err := schema.Parse(m, cache, db.NamingStrategy)
		if err != nil {
			log.Fatalf("parse %T: %v", m, err)
		}
		printTable(db, s)
	}
}

func printTable(db *gorm.DB, s *schema.Schema) {
	fmt.Printf("=== %s (GORM) ===\n", s.Table)
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		fmt.Printf("%-18s %-28s tag=%s\n", f.DBName, db.Dialector.DataTypeOf(f), f.Tag.Get("gorm"))
	}

	type col struct {
		Field string
		Type  string
		Null  string
		Key   string
	}
	var cols []col
	// Works on MySQL
	if err := db.Raw("SHOW COLUMNS FROM `" + s.Table + "`").Scan(&cols).Error; err != nil {
		fmt.Printf("SHOW COLUMNS FROM %s failed: %v\n\n", s.Table, err)
		return
	}
	fmt.Printf("=== %s (database) ===\n", s.Table)
	for _, c := range cols {
		fmt.Printf("%s\t%s\t%s\t%s\n", c.Field, c.Type, c.Null, c.Key)
	}
	fmt.Println()
}
