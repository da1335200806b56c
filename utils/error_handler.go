package utils

import (
	"database/sql"
	"errors"
)

// IsSQLNoRowsError 判断错误是否为数据库查询无结果
func IsSQLNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
