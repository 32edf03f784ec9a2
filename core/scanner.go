package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrTruncated = errors.New("dxf: truncated tag pair")

type Scanner struct {
	reader  *bufio.Reader
	LastTag Tag
	line    int
	pending bool
	err     error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
	}
}

// Next 读取下一组标签，结束或出错时返回 false
func (s *Scanner) Next() bool {
	if s.pending {
		s.pending = false
		return true
	}

	for {
		// 1. 读取 Code 行
		codeLine, err := s.readLine()
		if err != nil {
			if err != io.EOF {
				s.err = err
			}
			return false
		}

		codeStr := strings.TrimSpace(codeLine)
		if codeStr == "" { // 跳过空行
			continue
		}

		code, err := strconv.Atoi(codeStr)
		if err != nil {
			s.err = fmt.Errorf("dxf: line %d: %w", s.line, err)
			return false
		}

		// 2. 读取 Value 行，EOF 说明标签对不完整
		valueLine, err := s.readLine()
		if err != nil {
			s.err = fmt.Errorf("dxf: line %d: %w", s.line, ErrTruncated)
			return false
		}

		// 保留 Value 开头的空格（DXF 规范要求）
		s.LastTag = Tag{Code: code, Value: valueLine}
		return true
	}
}

// Unread 让下一次 Next 重新返回 LastTag
func (s *Scanner) Unread() {
	s.pending = true
}

// Line 返回当前读到的行号
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	s.line++
	return strings.TrimRight(line, "\r\n"), nil
}
