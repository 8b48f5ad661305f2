// Package logx is the daemon's logging layer over zerolog.
//
// Components take a Logger by value and attach fields with With. The
// Service behind them owns the console and file sinks and swaps them on
// config reload (Apply) without touching the loggers already handed out.
package logx
