/*
   Copyright (c) 2020, btnmasher
   All rights reserved.

   Redistribution and use in source and binary forms, with or without modification, are permitted provided that
   the following conditions are met:

   1. Redistributions of source code must retain the above copyright notice, this list of conditions and the
      following disclaimer.

   2. Redistributions in binary form must reproduce the above copyright notice, this list of conditions and
      the following disclaimer in the documentation and/or other materials provided with the distribution.

   3. Neither the name of the copyright holder nor the names of its contributors may be used to endorse or
      promote products derived from this software without specific prior written permission.

   THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED
   WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A
   PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR
   ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED
   TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
   HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
   NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
   POSSIBILITY OF SUCH DAMAGE.
*/

package hybrid

// Error is a workaround to allow for immutable error strings
// which satisfy the error interface.
type Error string

func (err Error) Error() string {
	return string(err)
}

func (err Error) String() string {
	return string(err)
}

// Internal/protocol errors. These never reach the wire verbatim; callers
// either translate them into one of the Reason strings below, or simply
// terminate the offending connection per the protocol error policy.
const (
	ErrLineTooLong   Error = "line exceeds maximum message length"
	ErrNoDelimiter   Error = "no command delimiter found"
	ErrFrameTooLarge Error = "voice frame exceeds maximum payload length"
	ErrShortRead     Error = "short read on socket"
	ErrServerClosed  Error = "hybrid: server closed"
)

// Reason strings sent verbatim to clients. These match the wire vocabulary
// of the protocol exactly; clients are expected to display them as-is.
const (
	ReasonNameTaken        = "Имя уже занято"
	ReasonNameBadLength    = "Имя должно быть 2-32 символов"
	ReasonPasswordTooShort = "Пароль минимум 4 символов"
	ReasonUserNotFound     = "Пользователь не найден"
	ReasonBadPassword      = "Неверный пароль"
	ReasonAlreadyOnline    = "Уже в сети"
	ReasonLoginFirst       = "Сначала войдите"
	ReasonBadFormat        = "Неверный формат"
	ReasonUnknownCommand   = "Неизвестная команда"
	ReasonChannelNotFound  = "Канал не найден"
	ReasonChannelEmpty     = "Имя канала не может быть пустым"
	ReasonChannelTooLong   = "Имя канала максимум 32 символа"
	ReasonChannelExists    = "Канал уже существует"
	ReasonChannelPermanent = "Нельзя удалить постоянный канал"
)
