package repository

import (
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"linktrace-go/internal/model"
	"linktrace-go/pkg/logging"
)

var (
	DB     *gorm.DB
	dbOnce sync.Once
)

// InitDB 建立数据库连接并执行一次性建表/迁移。
// 必须在服务开始接收流量之前调用；重复调用是幂等的。
func InitDB(logger *zap.Logger, atomicLogLevel zap.AtomicLevel) {
	dbOnce.Do(func() {
		dsn := viper.GetString("db.dsn")
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logging.NewGormLogger(logger, logging.ToGormLogLevel(atomicLogLevel.Level())),
			// 唯一键冲突等驱动错误翻译为 gorm 哨兵错误，供上层分类
			TranslateError: true,
		})
		if err != nil {
			logging.Logger.Fatal("Failed to connect database", zap.Error(err))
		}

		err = db.AutoMigrate(&model.Link{}, &model.Click{}, &model.DailyStat{})
		if err != nil {
			logging.Logger.Fatal("Failed to migrate database", zap.Error(err))
		}

		DB = db
	})
}
