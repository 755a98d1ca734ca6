// Package resp writes JSON responses in a consistent envelope.
//
// Successful responses carry the payload as is; failures carry a business
// code and a message:
//
//	{
//	  "code": 3000,
//	  "message": "Failed to parse next pagination cursor."
//	}
//
// Error converts coded errors from the ecode package into failures with the
// matching HTTP status:
//
//	res, err := p.Exec(ctx)
//	if err != nil {
//		resp.Error(w, err)
//		return
//	}
//	resp.Success(w, res)
package resp
