package handler

import (
	"strconv"

	"microblog/pkg/response"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的数字ID，失败时已写入400响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryInt 读取整数查询参数，缺失或非法时返回默认值
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// pagination page 从1开始，page_size 由仓储层限制上限
func pagination(c *gin.Context) (int, int) {
	return queryInt(c, "page", 1), queryInt(c, "page_size", 20)
}
