package service

import (
	"fmt"

	"gorm.io/gorm"
)

// nextOrder 返回显式排序值，未指定时追加到末尾（当前最大值 + 1）。
func nextOrder(gdb *gorm.DB, model interface{}, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	var maxOrder int
	if err := gdb.Model(model).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

// reorder 在事务中把 ids 依次赋值为 0,1,2...
func reorder(gdb *gorm.DB, model interface{}, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		for index, id := range ids {
			if err := tx.Model(model).Where("id = ?", id).Update("sort_order", index).Error; err != nil {
				return fmt.Errorf("reorder: %w", err)
			}
		}
		return nil
	})
}
