package model

import "encoding/json"

// Optional はJSONでキーが指定されたかどうかを保持する値。
// キーが存在すればnullであってもSetはtrueになる。
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some は指定済みのOptionalを生成する。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
// キーが存在する場合にのみ呼ばれるため、ここでSetを立てる。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
