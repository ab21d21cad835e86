package upload

import "context"

// FlushSynchronously drains the feature directory unconditionally. It
// runs on the worker's own execution context (so it can never overlap
// a scheduled tick), bypasses UploadConditions entirely, and deletes
// every batch it reads regardless of the upload outcome — retry is
// not attempted here. It returns as soon as the reader has no file
// left to hand out or a read fails: files younger than
// MinFileAgeForRead (including the current writable file) are not
// read and stay on disk. Used at shutdown and in tests that need a
// deterministic end state.
func (w *Worker) FlushSynchronously() {
	w.submit(func() {
		ctx := context.Background()
		for {
			batch, err := w.reader.ReadNextBatch(nil)
			if err != nil || batch == nil {
				return
			}
			status := w.up.Upload(ctx, w.buildReq(), batch.Body)
			if w.stats != nil {
				w.stats.ObserveUpload(status)
			}
			w.reader.MarkBatchAsRead(batch)
		}
	})
}
