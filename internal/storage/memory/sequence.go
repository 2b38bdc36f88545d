package memory

// sequence выдаёт монотонно растущие идентификаторы начиная с 1.
// Освобождённые удалением id повторно не выдаются. Не потокобезопасна:
// вызывается под блокировкой хранилища.
type sequence struct {
	issued int64
}

// next возвращает число выданных ранее id плюс один.
func (s *sequence) next() int64 {
	s.issued++
	return s.issued
}
