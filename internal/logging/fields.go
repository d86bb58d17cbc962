package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供资源路径/协商结果/状态码字段，供 dist 请求日志复用。
func RequestFields(assetPath, encoding string, status int) logrus.Fields {
	if encoding == "" {
		encoding = "identity"
	}
	return logrus.Fields{
		"action":   "serve",
		"path":     assetPath,
		"encoding": encoding,
		"status":   status,
	}
}
