// Package analysis implements the local analysers: expense CSV summaries,
// directory scans and client portfolio ROI. File access goes through an
// afero.Fs so callers can point the analysers at the OS or at memory.
package analysis
