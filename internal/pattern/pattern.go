// Package pattern 将循环上班/休息班型展开为具体日历日的分类。
//
// 所有日期均按"日历日"处理：只取年月日，统一表示为 UTC 零点，
// 不受夏令时切换影响。本包无 I/O、无副作用，同样的输入永远得到同样的结果。
package pattern

import (
	"errors"
	"fmt"
	"time"
)

// DayKind 日分类
type DayKind int

const (
	Work DayKind = iota + 1
	Rest
)

func (k DayKind) String() string {
	switch k {
	case Work:
		return "WORK"
	case Rest:
		return "REST"
	default:
		return "UNKNOWN"
	}
}

// DateLayout 日期字符串格式
const DateLayout = "2006-01-02"

var (
	ErrInvalidPattern = errors.New("班型参数无效")
	ErrBeforeStart    = errors.New("目标日期早于生效日期")
)

// Pattern N 天上班 + M 天休息的循环班型
type Pattern struct {
	WorkDays int
	RestDays int
}

// Validate WorkDays >= 1 且 RestDays >= 0
func (p Pattern) Validate() error {
	if p.WorkDays < 1 {
		return fmt.Errorf("%w: dias_trabajo=%d 必须 >= 1", ErrInvalidPattern, p.WorkDays)
	}
	if p.RestDays < 0 {
		return fmt.Errorf("%w: dias_descanso=%d 必须 >= 0", ErrInvalidPattern, p.RestDays)
	}
	return nil
}

// CycleLength 周期长度 = 上班天数 + 休息天数
func (p Pattern) CycleLength() int {
	return p.WorkDays + p.RestDays
}

// Classify 判断 target 在以 start 为第 0 天的循环中属于上班日还是休息日。
// offset = (day(target) - day(start)) mod cycle，offset < WorkDays 为上班日。
func Classify(p Pattern, start, target time.Time) (DayKind, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	diff := DayNumber(target) - DayNumber(start)
	if diff < 0 {
		return 0, fmt.Errorf("%w: %s < %s", ErrBeforeStart, Format(target), Format(start))
	}
	if diff%p.CycleLength() < p.WorkDays {
		return Work, nil
	}
	return Rest, nil
}

// DayNumber 返回日历日相对 1970-01-01 的天数（按 t 自身时区的年月日计算）
func DayNumber(t time.Time) int {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Unix() / 86400)
}

// CivilDate 将时间点换算到 loc 时区后截取年月日，返回 UTC 零点
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse 解析 YYYY-MM-DD 为日历日
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Format 日历日格式化为 YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Dates 枚举 [from, to] 闭区间内的每一个日历日；to 早于 from 时返回空
func Dates(from, to time.Time) []time.Time {
	from = CivilDate(from, nil)
	to = CivilDate(to, nil)
	if to.Before(from) {
		return nil
	}
	out := make([]time.Time, 0, DayNumber(to)-DayNumber(from)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// YearEnd 返回 d 所在年份的 12 月 31 日
func YearEnd(d time.Time) time.Time {
	return time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
