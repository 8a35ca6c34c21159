package record

import "strings"

/*
parseListLiteral 解析形如 ['a', "b", None] 的列表字面量，只接受字符串元素（None 被跳过）。
任何语法错误都返回 ok=false。
*/
func parseListLiteral(text string) (items []string, ok bool) {
	s := []rune(strings.TrimSpace(text))
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	s = s[1 : len(s)-1]

	items = make([]string, 0)
	i := 0
	skipSpace := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
			i++
		}
	}

	for {
		skipSpace()
		if i >= len(s) {
			return items, true
		}

		switch {
		case s[i] == '\'' || s[i] == '"':
			item, next, good := readQuoted(s, i)
			if !good {
				return nil, false
			}
			items = append(items, item)
			i = next
		case strings.HasPrefix(string(s[i:]), "None"):
			i += len("None")
		default:
			return nil, false
		}

		skipSpace()
		if i >= len(s) {
			return items, true
		}
		if s[i] != ',' {
			return nil, false
		}
		i++
	}
}

// readQuoted 读取从 s[start] 开始的引号字符串，返回内容与结束引号之后的下标。
func readQuoted(s []rune, start int) (string, int, bool) {
	quote := s[start]
	var b strings.Builder

	for i := start + 1; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\':
			if i+1 >= len(s) {
				return "", 0, false
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(s[i])
			}
		case ch == quote:
			return b.String(), i + 1, true
		default:
			b.WriteRune(ch)
		}
	}

	return "", 0, false
}
