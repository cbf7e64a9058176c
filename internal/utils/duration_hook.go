package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const invalidDurationTemplateConstant = "invalid duration %q: expected seconds or a duration such as 1500ms"

// SecondsDurationHookFunc decodes plain numbers as seconds and other strings as Go durations.
func SecondsDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != durationType {
			return data, nil
		}

		switch typedValue := data.(type) {
		case int:
			return time.Duration(typedValue) * time.Second, nil
		case int64:
			return time.Duration(typedValue) * time.Second, nil
		case float64:
			return time.Duration(typedValue * float64(time.Second)), nil
		case string:
			return parseSecondsOrDuration(typedValue)
		default:
			return data, nil
		}
	}
}

func parseSecondsOrDuration(rawValue string) (time.Duration, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return 0, nil
	}
	if seconds, parseError := strconv.ParseFloat(trimmedValue, 64); parseError == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	parsedDuration, durationError := time.ParseDuration(trimmedValue)
	if durationError != nil {
		return 0, fmt.Errorf(invalidDurationTemplateConstant, rawValue)
	}
	return parsedDuration, nil
}
