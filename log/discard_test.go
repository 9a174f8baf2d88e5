// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger

	logger.Debug("debug")
	logger.Debugf("debug %s", "msg")
	logger.Info("info")
	logger.Infof("info %s", "msg")
	logger.Warn("warn")
	logger.Warnf("warn %s", "msg")
	logger.Error("error")
	logger.Errorf("error %s", "msg")

	require.Equal(t, InfoLevel, logger.LogLevel())
	require.Equal(t, []io.Writer{io.Discard}, logger.LogOutput())
	require.NoError(t, logger.Flush())
	assert.Equal(t, DiscardLogger, logger.With("stake", "id"))

	assert.False(t, logger.Enabled(DebugLevel))
	assert.False(t, logger.Enabled(ErrorLevel))
	assert.True(t, logger.Enabled(PanicLevel))
	assert.True(t, logger.Enabled(FatalLevel))

	assert.PanicsWithValue(t, "panic", func() { logger.Panic("panic") })
	assert.PanicsWithValue(t, "panic 1", func() { logger.Panicf("panic %d", 1) })
}
