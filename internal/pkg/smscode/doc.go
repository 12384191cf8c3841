// Package smscode parses and formats origin-bound one-time code SMS messages.
//
// The last line of such a message binds the code to the origin allowed to
// receive it:
//
//	Your verification code is 123456.
//
//	@www.example.com #123456
//
// An optional third token names the embedded (iframe) origin:
//
//	@top.example #123456 @iframe.example
package smscode
