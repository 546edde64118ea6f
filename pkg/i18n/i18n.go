/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package i18n holds the translated messages shown next to log config fields.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type (
	// Key identifies a message in the catalog. Untranslated keys render as themselves.
	Key string
)

const (
	NameRequired          Key = "resource:config.common.nameError"
	LogTypeRequired       Key = "resource:config.common.logTypeError"
	RegexRequired         Key = "resource:config.common.regexError"
	RegexInvalid          Key = "resource:config.common.regexInvalid"
	RegexNotMatched       Key = "resource:config.common.regexNotMatch"
	SampleRequired        Key = "resource:config.common.sampleRequired"
	JSONInvalid           Key = "resource:config.common.jsonInvalid"
	SchemaRequired        Key = "resource:config.common.schemaRequired"
	LogFormatRequired     Key = "resource:config.common.logFormatError"
	LogFormatInvalid      Key = "resource:config.common.logFormatInvalid"
	TimeFormatRequired    Key = "resource:config.common.timeFormatRequired"
	TimeFormatNotVerified Key = "resource:config.common.timeFormatNotVerified"
	TimeFormatInvalid     Key = "resource:config.common.timeFormatInvalid"
	TimeFormatValid       Key = "resource:config.common.timeFormatValid"
	TimeOffsetInvalid     Key = "resource:config.common.timeOffsetInvalid"
	FilterKeyRequired     Key = "resource:config.common.filterKeyError"
	FilterValueInvalid    Key = "resource:config.common.filterValueError"
	ParseSuccess          Key = "resource:config.common.parseSuccess"
	GeneralError          Key = "common:error.general"
)

var (
	English = language.English
	Chinese = language.Chinese

	catalog = map[language.Tag]map[Key]string{
		language.English: {
			NameRequired:          "Please input the config name",
			LogTypeRequired:       "Please select a log type",
			RegexRequired:         "Please input the regular expression",
			RegexInvalid:          "The regular expression is invalid",
			RegexNotMatched:       "The sample log does not match the regular expression",
			SampleRequired:        "Please input a sample log",
			JSONInvalid:           "The sample log is not valid JSON",
			SchemaRequired:        "Please parse the sample log to generate the schema",
			LogFormatRequired:     "Please input the log format",
			LogFormatInvalid:      "The log format is invalid",
			TimeFormatRequired:    "Please input the time format",
			TimeFormatNotVerified: "Please validate the time format",
			TimeFormatInvalid:     "The time format does not match the sample value",
			TimeFormatValid:       "The time format matches the sample value",
			TimeOffsetInvalid:     "The time offset is invalid",
			FilterKeyRequired:     "Please select the filter key",
			FilterValueInvalid:    "The filter value is not a valid regular expression",
			ParseSuccess:          "The sample log was parsed successfully",
			GeneralError:          "An error occurred, please try again",
		},
		language.Chinese: {
			NameRequired:          "请输入配置名称",
			LogTypeRequired:       "请选择日志类型",
			RegexRequired:         "请输入正则表达式",
			RegexInvalid:          "正则表达式无效",
			RegexNotMatched:       "示例日志与正则表达式不匹配",
			SampleRequired:        "请输入示例日志",
			JSONInvalid:           "示例日志不是合法的JSON",
			SchemaRequired:        "请解析示例日志以生成Schema",
			LogFormatRequired:     "请输入日志格式",
			LogFormatInvalid:      "日志格式无效",
			TimeFormatRequired:    "请输入时间格式",
			TimeFormatNotVerified: "请验证时间格式",
			TimeFormatInvalid:     "时间格式与示例值不匹配",
			TimeFormatValid:       "时间格式与示例值匹配",
			TimeOffsetInvalid:     "时区偏移无效",
			FilterKeyRequired:     "请选择过滤字段",
			FilterValueInvalid:    "过滤值不是合法的正则表达式",
			ParseSuccess:          "示例日志解析成功",
			GeneralError:          "发生错误, 请重试",
		},
	}

	matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})
)

func init() {
	for tag, messages := range catalog {
		for key, msg := range messages {
			message.SetString(tag, string(key), msg)
		}
	}
}

// Parse resolves a user supplied language such as "zh-CN" to a supported tag.
// Unknown or malformed values resolve to English.
func Parse(lang string) language.Tag {
	tag, _, _ := language.ParseAcceptLanguage(lang)
	if len(tag) == 0 {
		return language.English
	}
	_, index, _ := matcher.Match(tag...)
	if index == 1 {
		return language.Chinese
	}
	return language.English
}

// T translates key into the language identified by tag.
func T(tag language.Tag, key Key) string {
	if key == "" {
		return ""
	}
	return message.NewPrinter(tag).Sprintf(string(key))
}

// Error is a local validation error carrying a message key.
type Error struct {
	Key Key
}

func (e *Error) Error() string {
	return T(language.English, e.Key)
}

// NewError returns an error whose message is translated from key.
func NewError(key Key) error {
	return &Error{Key: key}
}
